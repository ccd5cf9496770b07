// Package stats tracks per-player combat statistics backed by the
// persistence gateway.
package stats

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/louisbranch/ffa-arena/internal/arena/storage"
	apperrors "github.com/louisbranch/ffa-arena/internal/platform/errors"
	"github.com/rs/zerolog"
)

// State reports how far a record has progressed through its initial load.
type State int

const (
	// StateConstructing means the stats read has not resolved yet.
	StateConstructing State = iota
	// StateLoaded means the record holds persisted values, or defaults after
	// a failed read.
	StateLoaded
	// StateDefective means the identity row was missing right after it was
	// upserted.
	StateDefective
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateLoaded:
		return "loaded"
	case StateDefective:
		return "defective"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrPlayerNotRegistered is reported when the stats read finds no row for a
// player whose identity upsert was issued first.
var ErrPlayerNotRegistered = apperrors.New(apperrors.CodePlayerNotRegistered, "player row missing after registration")

// Snapshot is a point-in-time copy of a record's counters.
type Snapshot struct {
	UUID              string
	Name              string
	Kills             int
	Deaths            int
	KDR               float64
	HighestKillStreak int
}

// Option configures a Record.
type Option func(*Record)

// WithLogger sets the logger used for load failures and defects.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Record) {
		r.logger = logger
	}
}

// Record is one player's statistics. Mutations update memory and issue the
// matching persistence operations in the same critical section, so writes
// reach the store in the order they were made.
type Record struct {
	gw     storage.Gateway
	logger zerolog.Logger
	loaded chan struct{}

	mu      sync.Mutex
	state   State
	loadErr error
	snap    Snapshot
}

// New creates a record and starts loading it: the identity upsert is issued
// first and the stats read is issued once the upsert has completed. The uuid
// is an opaque key; any non-blank string is accepted.
func New(gw storage.Gateway, playerUUID, name string, opts ...Option) (*Record, error) {
	if gw == nil {
		return nil, fmt.Errorf("stats gateway is required")
	}
	if strings.TrimSpace(playerUUID) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "player uuid is required")
	}

	r := &Record{
		gw:     gw,
		logger: zerolog.Nop(),
		loaded: make(chan struct{}),
		snap:   Snapshot{UUID: playerUUID, Name: name},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("uuid", playerUUID).Logger()

	gw.Player(playerUUID, name).Then(func(struct{}, error) {
		// Upsert failures are reported by the gateway; the read still decides
		// whether the row exists.
		gw.StatsByUUID(playerUUID).Then(r.applyRows)
	})
	return r, nil
}

func (r *Record) applyRows(rows []storage.StatsRow, err error) {
	r.mu.Lock()
	defer func() {
		r.mu.Unlock()
		close(r.loaded)
	}()

	switch {
	case err != nil:
		r.state = StateLoaded
		r.loadErr = err
		r.logger.Error().Err(err).Msg("load stats")
	case len(rows) == 0:
		r.state = StateDefective
		r.loadErr = apperrors.WithMetadata(
			apperrors.CodePlayerNotRegistered,
			ErrPlayerNotRegistered.Message,
			map[string]string{"uuid": r.snap.UUID},
		)
		r.logger.Error().Err(r.loadErr).Msg("stats row missing after player upsert")
	default:
		row := rows[0]
		r.snap.Kills = row.Kills
		r.snap.Deaths = row.Deaths
		r.snap.KDR = row.KDR
		r.snap.HighestKillStreak = row.HighestKillStreak
		r.state = StateLoaded
	}
}

// State returns the load state.
func (r *Record) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Loaded is closed once the initial stats read has resolved.
func (r *Record) Loaded() <-chan struct{} {
	return r.loaded
}

// WaitLoaded blocks until the initial read resolves and returns its error,
// if any. A defective record returns ErrPlayerNotRegistered.
func (r *Record) WaitLoaded(ctx context.Context) error {
	select {
	case <-r.loaded:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

func (r *Record) UUID() string { return r.snap.UUID }

func (r *Record) Name() string { return r.snap.Name }

func (r *Record) Kills() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.Kills
}

func (r *Record) Deaths() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.Deaths
}

func (r *Record) KDR() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.KDR
}

func (r *Record) HighestKillStreak() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.HighestKillStreak
}

// Snapshot returns a copy of the current counters.
func (r *Record) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// AddKill increments kills, then persists kills followed by the recomputed KDR.
func (r *Record) AddKill() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Kills++
	r.snap.KDR = KDR(r.snap.Kills, r.snap.Deaths)
	r.gw.Update(r.snap.UUID, storage.StatKills, r.snap.Kills)
	r.gw.UpdateKDR(r.snap.UUID, r.snap.KDR)
}

// AddDeath increments deaths, then persists deaths followed by the
// recomputed KDR.
func (r *Record) AddDeath() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Deaths++
	r.snap.KDR = KDR(r.snap.Kills, r.snap.Deaths)
	r.gw.Update(r.snap.UUID, storage.StatDeaths, r.snap.Deaths)
	r.gw.UpdateKDR(r.snap.UUID, r.snap.KDR)
}

// SetHighestKillStreak overwrites the stored streak with n, even when n is
// lower than the current value.
func (r *Record) SetHighestKillStreak(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.HighestKillStreak = n
	r.gw.Update(r.snap.UUID, storage.StatHighestKillStreak, n)
}
