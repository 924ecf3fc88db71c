package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/oms/internal/adapter/woo"
	"github.com/roach88/oms/internal/courier"
	"github.com/roach88/oms/internal/ingest"
	"github.com/roach88/oms/internal/normalize"
	"github.com/roach88/oms/internal/reconcile"
	"github.com/roach88/oms/internal/store"
	"github.com/roach88/oms/internal/testutil"
)

// seedStorefrontOrder stores one storefront order and returns its id.
func seedStorefrontOrder(t *testing.T, dbPath string) int64 {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(string(store.SQLite), dbPath)
	require.NoError(t, err)
	defer st.Close()

	p, err := ingest.New(normalize.NewCleaner(), reconcile.New(st), ingest.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)

	o, err := woo.Decode([]byte(storefrontOrder(727, "processing", "9841234567")))
	require.NoError(t, err)
	rep, err := p.Ingest(ctx, "woocommerce", woo.ToRawRecords(o))
	require.NoError(t, err)
	require.Equal(t, ingest.OutcomeComplete, rep.Outcome())
	return rep.Result.Orders[0].ID
}

func runShipCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewShipCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "oms.db")
	id := seedStorefrontOrder(t, dbPath)

	var got courier.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token k3y", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message": "Order Successfully Created", "orderid": 4321}`))
	}))
	defer srv.Close()

	opts := &RootOptions{Format: "text", Getenv: env(map[string]string{
		"OMS_COURIER_BASE_URL": srv.URL,
		"OMS_COURIER_API_KEY":  "k3y",
	})}
	idArg := strconv.FormatInt(id, 10)

	out, err := runShipCmd(t, opts, idArg, "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "order "+idArg+" booked: package 4321\n", out)
	assert.Equal(t, "1950.00", got.CODCharge)
	assert.Equal(t, "POKHARA", got.FromBranch)
	assert.Equal(t, "POKHARA", got.ToBranch)
	assert.Equal(t, "Sita Sharma", got.Name)

	st, err := store.Open(string(store.SQLite), dbPath)
	require.NoError(t, err)
	o, err := st.Order(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "4321", o.DeliveryPackageID)
	require.NoError(t, st.Close())

	_, err = runShipCmd(t, opts, idArg, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, courier.ErrAlreadyShipped)
}

func TestShip_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "oms.db")
	configured := &RootOptions{Format: "text", Getenv: env(map[string]string{
		"OMS_COURIER_BASE_URL": "http://127.0.0.1:1",
		"OMS_COURIER_API_KEY":  "k",
	})}

	_, err := runShipCmd(t, configured, "abc", "--db", dbPath)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runShipCmd(t, configured, "999", "--db", dbPath)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "order 999 not found")

	_, err = runShipCmd(t, &RootOptions{Format: "text", Getenv: env(nil)}, "1", "--db", dbPath)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "courier.base_url not set")
}
