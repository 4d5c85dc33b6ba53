package theme

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const prefKey = "theme"

// Prefs is the preference storage the mode is persisted to.
type Prefs interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store is the current mode. Toggle runs from tea.Cmd goroutines, so reads
// and writes are guarded.
type Store struct {
	mu    sync.RWMutex
	mode  Mode
	prefs Prefs
	log   *zap.Logger
}

// NewStore starts at fallback. prefs may be nil for an unpersisted store.
func NewStore(prefs Prefs, fallback Mode, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{mode: fallback, prefs: prefs, log: log}
}

// Load reads the persisted mode. A missing or unreadable value keeps the
// current one.
func (s *Store) Load(ctx context.Context) (Mode, error) {
	if s.prefs == nil {
		return s.Mode(), nil
	}
	v, ok, err := s.prefs.Get(ctx, prefKey)
	if err != nil {
		return s.Mode(), fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return s.Mode(), nil
	}
	m, err := ParseMode(v)
	if err != nil {
		s.log.Warn("ignoring stored theme", zap.String("value", v))
		return s.Mode(), nil
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return m, nil
}

func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Toggle flips the mode and persists it. The in-memory mode changes even if
// persisting fails.
func (s *Store) Toggle(ctx context.Context) (Mode, error) {
	s.mu.Lock()
	s.mode = s.mode.Toggle()
	m := s.mode
	s.mu.Unlock()

	s.log.Debug("theme toggled", zap.Stringer("mode", m))
	if s.prefs == nil {
		return m, nil
	}
	if err := s.prefs.Set(ctx, prefKey, m.String()); err != nil {
		return m, fmt.Errorf("save theme: %w", err)
	}
	return m, nil
}
