package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "oms.db")
	ready := make(chan string, 1)
	opts := &ServeOptions{
		RootOptions:   &RootOptions{Format: "text", Getenv: env(nil)},
		DatabaseFlags: DatabaseFlags{Database: dbPath},
		Addr:          "127.0.0.1:0",
		Ready:         ready,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := NewServeCommand(opts.RootOptions)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- runServe(opts, cmd) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	base := "http://" + addr

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := storefrontOrder(727, "processing", "9841234567")
	resp, err = http.Post(base+"/webhooks/woocommerce/orders", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	reply, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(reply))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Equal(t, 1, countRows(t, dbPath, "orders"))
}

func TestServe_BadAddr(t *testing.T) {
	opts := &ServeOptions{
		RootOptions:   &RootOptions{Format: "text", Getenv: env(nil)},
		DatabaseFlags: DatabaseFlags{Database: filepath.Join(t.TempDir(), "oms.db")},
		Addr:          "not-an-address",
	}
	cmd := NewServeCommand(opts.RootOptions)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())

	err := runServe(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
