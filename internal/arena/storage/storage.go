// Package storage defines the persistence contracts for player statistics:
// the synchronous Engine implemented by each backend and the asynchronous
// Gateway consumed by stats records.
package storage

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/ffa-arena/internal/platform/errors"
)

var (
	// ErrNotFound indicates a requested player row is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrBusy indicates the store could not take a lock in time.
	ErrBusy = apperrors.New(apperrors.CodeStoreBusy, "store is busy")
)

// Query names one logical persisted query.
type Query string

const (
	// QueryPlayer inserts the identity row, or updates its name.
	QueryPlayer Query = "player"
	// QueryStatsByUUID reads zero or one stats row.
	QueryStatsByUUID Query = "statsByUuid"
	// QueryUpdate overwrites one counter.
	QueryUpdate Query = "update"
	// QueryUpdateKDR overwrites the kill/death ratio.
	QueryUpdateKDR Query = "updateKdr"
)

// Stat names a counter that can be written through QueryUpdate.
type Stat string

const (
	StatKills             Stat = "kills"
	StatDeaths            Stat = "deaths"
	StatHighestKillStreak Stat = "highestKillStreak"
)

// Validate rejects stat names outside the writable set.
func (s Stat) Validate() error {
	switch s {
	case StatKills, StatDeaths, StatHighestKillStreak:
		return nil
	default:
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown stat %q", string(s)))
	}
}

// StatsRow is one persisted player statistics row.
type StatsRow struct {
	UUID              string
	Name              string
	Kills             int
	Deaths            int
	KDR               float64
	HighestKillStreak int
}

// Engine executes queries synchronously against a concrete store.
type Engine interface {
	UpsertPlayer(ctx context.Context, uuid, name string) error
	StatsByUUID(ctx context.Context, uuid string) ([]StatsRow, error)
	UpdateStat(ctx context.Context, uuid string, stat Stat, value int) error
	UpdateKDR(ctx context.Context, uuid string, value float64) error
	Close() error
}

// Gateway submits queries without blocking the caller. Each call returns a
// future that resolves once the store has executed the query.
type Gateway interface {
	Player(uuid, name string) *Future[struct{}]
	StatsByUUID(uuid string) *Future[[]StatsRow]
	Update(uuid string, stat Stat, value int) *Future[struct{}]
	UpdateKDR(uuid string, value float64) *Future[struct{}]
}
