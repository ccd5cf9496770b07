// Package bbolt provides a BoltDB-backed player statistics engine.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/ffa-arena/internal/arena/storage"
	"go.etcd.io/bbolt"
)

const playerBucket = "players"

// Store persists one JSON document per player UUID.
type Store struct {
	db *bbolt.DB
}

var _ storage.Engine = (*Store)(nil)

type playerRecord struct {
	UUID              string  `json:"uuid"`
	Name              string  `json:"name"`
	Kills             int     `json:"kills"`
	Deaths            int     `json:"deaths"`
	KDR               float64 `json:"kdr"`
	HighestKillStreak int     `json:"highest_kill_streak"`
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context, uuid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(uuid) == "" {
		return fmt.Errorf("uuid is required")
	}
	return nil
}

// UpsertPlayer inserts a zeroed row or refreshes the stored name.
func (s *Store) UpsertPlayer(ctx context.Context, uuid, name string) error {
	if err := s.ready(ctx, uuid); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := playersBucket(tx)
		if err != nil {
			return err
		}
		record, found, err := readRecord(bucket, uuid)
		if err != nil {
			return err
		}
		if !found {
			record = playerRecord{UUID: uuid}
		}
		record.Name = name
		return writeRecord(bucket, record)
	})
}

// StatsByUUID returns zero or one row for uuid.
func (s *Store) StatsByUUID(ctx context.Context, uuid string) ([]storage.StatsRow, error) {
	if err := s.ready(ctx, uuid); err != nil {
		return nil, err
	}
	var rows []storage.StatsRow
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := playersBucket(tx)
		if err != nil {
			return err
		}
		record, found, err := readRecord(bucket, uuid)
		if err != nil || !found {
			return err
		}
		rows = append(rows, storage.StatsRow(record))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStat overwrites one counter. Updating a missing player is a no-op.
func (s *Store) UpdateStat(ctx context.Context, uuid string, stat storage.Stat, value int) error {
	if err := s.ready(ctx, uuid); err != nil {
		return err
	}
	if err := stat.Validate(); err != nil {
		return err
	}
	return s.mutate(uuid, func(record *playerRecord) {
		switch stat {
		case storage.StatKills:
			record.Kills = value
		case storage.StatDeaths:
			record.Deaths = value
		case storage.StatHighestKillStreak:
			record.HighestKillStreak = value
		}
	})
}

// UpdateKDR overwrites the kill/death ratio.
func (s *Store) UpdateKDR(ctx context.Context, uuid string, value float64) error {
	if err := s.ready(ctx, uuid); err != nil {
		return err
	}
	return s.mutate(uuid, func(record *playerRecord) {
		record.KDR = value
	})
}

func (s *Store) mutate(uuid string, apply func(*playerRecord)) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := playersBucket(tx)
		if err != nil {
			return err
		}
		record, found, err := readRecord(bucket, uuid)
		if err != nil || !found {
			return err
		}
		apply(&record)
		return writeRecord(bucket, record)
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(playerBucket)); err != nil {
			return fmt.Errorf("create player bucket: %w", err)
		}
		return nil
	})
}

func playersBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	bucket := tx.Bucket([]byte(playerBucket))
	if bucket == nil {
		return nil, fmt.Errorf("player bucket is missing")
	}
	return bucket, nil
}

func readRecord(bucket *bbolt.Bucket, uuid string) (playerRecord, bool, error) {
	payload := bucket.Get(playerKey(uuid))
	if payload == nil {
		return playerRecord{}, false, nil
	}
	var record playerRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return playerRecord{}, false, fmt.Errorf("unmarshal player: %w", err)
	}
	return record, true, nil
}

func writeRecord(bucket *bbolt.Bucket, record playerRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal player: %w", err)
	}
	return bucket.Put(playerKey(record.UUID), payload)
}

func playerKey(uuid string) []byte {
	return []byte(uuid)
}
