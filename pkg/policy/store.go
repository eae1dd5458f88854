package policy

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Store holds the active Evaluator for a policy file and reloads it on
// demand. A failed reload leaves the previous evaluator in place.
type Store struct {
	path   string
	opts   []Option
	logger *slog.Logger

	mu        sync.RWMutex
	evaluator *Evaluator
	loadedAt  time.Time
}

// NewStore loads the policy file at path. opts are applied to every
// evaluator the store builds.
func NewStore(path string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		opts:   opts,
		logger: logger.With("component", "policy.store"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the policy file path.
func (s *Store) Path() string {
	return s.path
}

// Evaluator returns the active evaluator.
func (s *Store) Evaluator() *Evaluator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluator
}

// LoadedAt returns when the active rule set was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload re-reads the policy file and swaps in the new rule set if it is
// valid.
func (s *Store) Reload() error {
	rules, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	evaluator, err := NewEvaluator(rules, s.opts...)
	if err != nil {
		return fmt.Errorf("policy file %q: %w", s.path, err)
	}

	s.mu.Lock()
	s.evaluator = evaluator
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("policies loaded",
		"path", s.path,
		"rules", len(rules),
	)
	return nil
}
