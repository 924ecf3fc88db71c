package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/oms/internal/store"
)

// NewStore opens a fresh SQLite store in a temp dir and closes it when the
// test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(string(store.SQLite), filepath.Join(t.TempDir(), "oms.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close test store: %v", err)
		}
	})
	return s
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
