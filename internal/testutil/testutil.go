// Package testutil provides shared test helpers for setting up databases.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jly61/knowledge-and-blog/internal/store"
)

// TestStore opens a temporary SQLite database that is removed when the test ends.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "kb-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := store.Open(context.Background(), store.DriverSQLite, dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
