package sqlite

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated in-memory database private to t. The writer
// and reader pools share it through cache=shared under a name derived from
// t.Name().
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := openDB(context.Background(), buildDSN(url.PathEscape(t.Name()), "mode=memory", "cache=shared"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = RunMigrations(db.Writer)
	require.NoError(t, err)

	return db
}
