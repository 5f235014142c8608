package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSaveAndLoadRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, RunRecord{
		ProjectRoot:    "/repo",
		CommitHash:     "abc123",
		Timestamp:      base,
		FilesAnalyzed:  12,
		ViolationCount: 3,
		Duration:       1500 * time.Millisecond,
		RuleCounts:     map[string]int{"layer-import-boundary": 2, "no-circular-layer-deps": 1},
	}))
	require.NoError(t, store.SaveRun(ctx, RunRecord{
		ProjectRoot:   "/repo",
		Timestamp:     base.Add(time.Hour),
		FilesAnalyzed: 12,
		Passed:        true,
	}))
	require.NoError(t, store.SaveRun(ctx, RunRecord{ProjectRoot: "/other", Timestamp: base}))

	runs, err := store.LoadRuns(ctx, "/repo", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	newest, oldest := runs[0], runs[1]
	assert.True(t, newest.Passed)
	assert.Equal(t, base.Add(time.Hour), newest.Timestamp)
	assert.Empty(t, newest.RuleCounts)
	assert.NotEmpty(t, newest.ID)

	assert.False(t, oldest.Passed)
	assert.Equal(t, "abc123", oldest.CommitHash)
	assert.Equal(t, 3, oldest.ViolationCount)
	assert.Equal(t, 1500*time.Millisecond, oldest.Duration)
	assert.Equal(t, map[string]int{"layer-import-boundary": 2, "no-circular-layer-deps": 1}, oldest.RuleCounts)

	limited, err := store.LoadRuns(ctx, "/repo", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newest.ID, limited[0].ID)
}

func TestStoreRejectsEmptyRoot(t *testing.T) {
	store := openStore(t)
	assert.Error(t, store.SaveRun(context.Background(), RunRecord{}))
}

func TestOpenRejectsBadPaths(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)

	_, err = Open(t.TempDir())
	assert.Error(t, err)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	store := openStore(t)
	require.NoError(t, EnsureSchema(store.db))

	var version int
	require.NoError(t, store.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, SchemaVersion, version)
}

func TestEnsureSchemaRejectsNewerDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.db.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sql.Open(driverName, "file:"+path)
	require.NoError(t, err)
	defer db.Close()
	assert.Error(t, EnsureSchema(db))
}

func TestIsLockError(t *testing.T) {
	assert.True(t, isLockError(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, isLockError(errors.New("no such table: runs")))
	assert.False(t, isLockError(nil))
}
