// Package storetest opens throwaway sqlite stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
)

// Config returns a sqlite config pointing into a per-test directory.
func Config(t testing.TB) *store.Config {
	t.Helper()
	cfg := &store.Config{Driver: store.DriverSQLite, Database: filepath.Join(t.TempDir(), "dbkeeper.db")}
	store.SetDefaults(cfg)
	return cfg
}

// Open starts a store component on a fresh sqlite file and stops it when
// the test ends.
func Open(t testing.TB, stmts ...string) *store.Store {
	t.Helper()
	c, err := store.NewFactory(nil).Create(Config(t))
	if err != nil {
		t.Fatalf("sqlite config: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	Exec(t, c.Store(), stmts...)
	return c.Store()
}

// Exec runs each statement, failing the test on the first error.
func Exec(t testing.TB, s *store.Store, stmts ...string) {
	t.Helper()
	for _, q := range stmts {
		if _, err := s.DB().Exec(q); err != nil {
			t.Fatalf("exec %q: %v", q, err)
		}
	}
}
