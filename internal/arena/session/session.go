// Package session keeps one live session per connected player and turns
// combat events into stats mutations.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/louisbranch/ffa-arena/internal/arena/stats"
	"github.com/louisbranch/ffa-arena/internal/arena/storage"
	apperrors "github.com/louisbranch/ffa-arena/internal/platform/errors"
	"github.com/rs/zerolog"
)

// Session is a connected player and their current kill streak.
type Session struct {
	stats *stats.Record

	mu     sync.Mutex
	streak int
}

// Stats returns the player's statistics record.
func (s *Session) Stats() *stats.Record {
	return s.stats
}

// Streak returns the kills since the player's last death.
func (s *Session) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// RecordKill adds a kill and raises the highest streak when the current one
// passes it.
func (s *Session) RecordKill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.AddKill()
	s.streak++
	if s.streak > s.stats.HighestKillStreak() {
		s.stats.SetHighestKillStreak(s.streak)
	}
}

// RecordDeath adds a death and resets the streak.
func (s *Session) RecordDeath() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.AddDeath()
	s.streak = 0
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger handed to new stats records.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager is the registry of live sessions keyed by player UUID.
type Manager struct {
	gw     storage.Gateway
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty registry backed by gw.
func NewManager(gw storage.Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:       gw,
		logger:   zerolog.Nop(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Join returns the player's session, creating it and starting the stats load
// on first join.
func (m *Manager) Join(playerUUID, name string) (*Session, error) {
	key, err := normalizeUUID(playerUUID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "player name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s, nil
	}
	record, err := stats.New(m.gw, key, name, stats.WithLogger(m.logger))
	if err != nil {
		return nil, fmt.Errorf("create stats record: %w", err)
	}
	s := &Session{stats: record}
	m.sessions[key] = s
	m.logger.Debug().Str("uuid", key).Str("name", name).Msg("player joined")
	return s, nil
}

// Get returns the live session for playerUUID.
func (m *Manager) Get(playerUUID string) (*Session, bool) {
	key, err := normalizeUUID(playerUUID)
	if err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Leave drops the player's session. Writes already issued still complete.
func (m *Manager) Leave(playerUUID string) bool {
	key, err := normalizeUUID(playerUUID)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[key]; !ok {
		return false
	}
	delete(m.sessions, key)
	m.logger.Debug().Str("uuid", key).Msg("player left")
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func normalizeUUID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperrors.WrapWithMetadata(
			apperrors.CodeInvalidArgument,
			"invalid player uuid",
			map[string]string{"uuid": raw},
			err,
		)
	}
	return id.String(), nil
}
