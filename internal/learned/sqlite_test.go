package learned

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "learned.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_AppendAndLoad(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	added, skipped, err := store.Append(ctx, []Entry{
		{WineName: "Château Lafleur", VintageKey: "2018", ItemNo: 4501},
		{WineName: "Krug Grande Cuvée", VintageKey: "NV", ItemNo: 7002, Note: "manual correction"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, skipped)

	lookup, entries, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 4501, lookup[NewKey("chateau lafleur", "2018")])
	assert.Equal(t, "manual correction", entries[1].Note)
	assert.False(t, entries[1].RecordedAt.IsZero())
}

func TestSQLiteStore_DedupByTriple(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	_, _, err := store.Append(ctx, []Entry{
		{WineName: "Pétrus", VintageKey: "2016", ItemNo: 1234},
	})
	require.NoError(t, err)

	added, skipped, err := store.Append(ctx, []Entry{
		{WineName: "petrus", VintageKey: "2016", ItemNo: 1234}, // same triple after normalization
		{WineName: "Pétrus", VintageKey: "2016", ItemNo: 5678},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, skipped)

	lookup, entries, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 5678, lookup[NewKey("Pétrus", "2016")], "later entry wins the key")
}

func TestSQLiteStore_EmptyAppend(t *testing.T) {
	store := newTestSQLite(t)

	added, skipped, err := store.Append(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Zero(t, skipped)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open("file", filepath.Join(dir, "store.txt"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = Open("", filepath.Join(dir, "store.txt"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = Open("sqlite", filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	store.Close()

	_, err = Open("postgres", "dsn")
	require.Error(t, err)
}
