package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	t.Parallel()
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_players.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE players(uuid TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE players;"),
		},
	}

	require.NoError(t, ApplyMigrations(context.Background(), db, migrations, ""))
	require.EqualValues(t, 1, queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"))
	require.True(t, tableExists(t, db, "players"))
}

func TestApplyMigrationsSkipsAlreadyApplied(t *testing.T) {
	t.Parallel()
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_players.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE players(uuid TEXT PRIMARY KEY);"),
		},
	}
	require.NoError(t, ApplyMigrations(context.Background(), db, migrations, ""))
	require.NoError(t, ApplyMigrations(context.Background(), db, migrations, ""))
	require.EqualValues(t, 1, queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"))
}

func TestApplyMigrationsDoesNotRecordFailedMigration(t *testing.T) {
	t.Parallel()
	db := openInMemoryDB(t)

	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREAT table things(id INT);")},
	}
	require.Error(t, ApplyMigrations(context.Background(), db, bad, ""))
	require.EqualValues(t, 0, queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"))

	good := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE things(id INTEGER PRIMARY KEY);")},
	}
	require.NoError(t, ApplyMigrations(context.Background(), db, good, ""))
	require.EqualValues(t, 1, queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"))
}

func TestApplyMigrationsRespectsMigrationRoot(t *testing.T) {
	t.Parallel()
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"stats/001_stats.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE stat_rows(id TEXT PRIMARY KEY);"),
		},
	}
	require.NoError(t, ApplyMigrations(context.Background(), db, migrations, "stats"))
	require.Equal(t, "stats/001_stats.sql", queryString(t, db, "SELECT name FROM schema_migrations LIMIT 1"))
	require.True(t, tableExists(t, db, "stat_rows"))
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	t.Parallel()
	require.Error(t, ApplyMigrations(context.Background(), nil, fstest.MapFS{}, ""))
}

func TestExtractUpMigration(t *testing.T) {
	t.Parallel()

	require.Equal(t, "\nA;\n", ExtractUpMigration("-- +migrate Up\nA;\n-- +migrate Down\nB;"))
	require.Equal(t, "\nA;", ExtractUpMigration("-- +migrate Up\nA;"))
	require.Equal(t, "A;", ExtractUpMigration("A;"))
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Each pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	require.NoError(t, db.QueryRow(query).Scan(&value))
	return value
}

func queryString(t *testing.T, db *sql.DB, query string) string {
	t.Helper()
	var value string
	require.NoError(t, db.QueryRow(query).Scan(&value))
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	require.NoError(t, err)
	return name == tableName
}
