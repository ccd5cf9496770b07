// Package sqlite provides a SQLite-backed player statistics engine.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/ffa-arena/internal/arena/storage"
	"github.com/louisbranch/ffa-arena/internal/arena/storage/sqlite/migrations"
	sqlitemigrate "github.com/louisbranch/ffa-arena/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists player statistics in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Engine = (*Store)(nil)

// statColumns whitelists the columns QueryUpdate may write.
var statColumns = map[storage.Stat]string{
	storage.StatKills:             "kills",
	storage.StatDeaths:            "deaths",
	storage.StatHighestKillStreak: "highest_kill_streak",
}

// Open opens a SQLite statistics store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context, uuid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(uuid) == "" {
		return fmt.Errorf("uuid is required")
	}
	return nil
}

// UpsertPlayer inserts the identity row or refreshes its name.
func (s *Store) UpsertPlayer(ctx context.Context, uuid, name string) error {
	if err := s.ready(ctx, uuid); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO players (uuid, name) VALUES (?, ?)
		 ON CONFLICT(uuid) DO UPDATE SET name = excluded.name`,
		uuid,
		name,
	)
	if err != nil {
		return classify("upsert player", err)
	}
	return nil
}

// StatsByUUID returns zero or one row for uuid.
func (s *Store) StatsByUUID(ctx context.Context, uuid string) ([]storage.StatsRow, error) {
	if err := s.ready(ctx, uuid); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT uuid, name, kills, deaths, kdr, highest_kill_streak
		   FROM players
		  WHERE uuid = ?`,
		uuid,
	)
	if err != nil {
		return nil, classify("stats by uuid", err)
	}
	defer rows.Close()

	var out []storage.StatsRow
	for rows.Next() {
		var row storage.StatsRow
		if err := rows.Scan(
			&row.UUID,
			&row.Name,
			&row.Kills,
			&row.Deaths,
			&row.KDR,
			&row.HighestKillStreak,
		); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate stats rows", err)
	}
	return out, nil
}

// UpdateStat overwrites one counter. Updating a missing row is a no-op.
func (s *Store) UpdateStat(ctx context.Context, uuid string, stat storage.Stat, value int) error {
	if err := s.ready(ctx, uuid); err != nil {
		return err
	}
	column, ok := statColumns[stat]
	if !ok {
		return stat.Validate()
	}
	if _, err := s.sqlDB.ExecContext(ctx, "UPDATE players SET "+column+" = ? WHERE uuid = ?", value, uuid); err != nil {
		return classify("update "+column, err)
	}
	return nil
}

// UpdateKDR overwrites the kill/death ratio.
func (s *Store) UpdateKDR(ctx context.Context, uuid string, value float64) error {
	if err := s.ready(ctx, uuid); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, "UPDATE players SET kdr = ? WHERE uuid = ?", value, uuid); err != nil {
		return classify("update kdr", err)
	}
	return nil
}

// classify tags lock contention with storage.ErrBusy.
func classify(op string, err error) error {
	if isBusy(err) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrBusy, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isBusy(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
		return true
	}
	return false
}
