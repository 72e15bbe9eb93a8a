package metadata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db))
	return db
}

func TestOpen_CreatesSchemaOnDisk(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "onboard.db")

	repo, db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repo.Set(ctx, "access_token", []byte("A1")))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='goose_db_version'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_ReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "onboard.db")

	repo, db, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, "refresh_token", []byte("R1")))
	require.NoError(t, db.Close())

	repo, db, err = Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	v, err := repo.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("R1"), v)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, RunMigrations(context.Background(), db))
}

func TestSQLite_SetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestSQLite_GetMissingReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLite_SetOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "access_token", []byte("old")))
	require.NoError(t, r.Set(ctx, "access_token", []byte("new")))

	v, err := r.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSQLite_DeleteIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestSQLite_BatchWritesAndDeletes(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, SetAll(ctx, r, map[string][]byte{
		"access_token":  []byte("A"),
		"refresh_token": []byte("R"),
		"auth-storage":  []byte(`{"user":null}`),
	}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 3)

	require.NoError(t, DeleteAll(ctx, r, "access_token", "refresh_token"))

	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 1)
	assert.Contains(t, m, "auth-storage")
}

func TestSQLite_ClearRemovesAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestSQLite_InsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	r := NewSQLiteRepository(tx)
	require.NoError(t, r.SetMany(ctx, map[string][]byte{"k": []byte("v")}))
	require.NoError(t, tx.Rollback())

	v, err := NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v, "rolled back write must not be visible")
}

func TestSQLite_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, "failed to set metadata[k]")

	err = r.Delete(ctx, "k")
	require.ErrorContains(t, err, "failed to delete metadata[k]")

	err = r.Clear(ctx)
	require.ErrorContains(t, err, "failed to clear metadata")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")

	require.Error(t, r.SetMany(ctx, map[string][]byte{"k": nil}))
}
