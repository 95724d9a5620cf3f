/*
scheduler.go - Simulation history retention sweeper

PURPOSE:
  Periodically deletes simulation records older than the retention
  window. Simulation history is a convenience view, not a ledger;
  letting it grow without bound just bloats the database file.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Deletes rows past Retention on each tick
  - Stop() blocks until the goroutine exits

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Retention: How long records live (default: 90 days)

USAGE:
  sweeper := NewRetentionSweeper(store, log)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - store/sqlite: PruneSimulations
  - cmd/server/main.go: Lifecycle wiring
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taxguard/tax-engine/store/sqlite"
)

// RetentionSweeper prunes old simulation history in the background.
type RetentionSweeper struct {
	Store         *sqlite.Store
	Log           *zap.Logger
	CheckInterval time.Duration
	Retention     time.Duration

	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewRetentionSweeper creates a sweeper with default intervals.
func NewRetentionSweeper(store *sqlite.Store, log *zap.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		Store:         store,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		Retention:     90 * 24 * time.Hour,
	}
}

// Start launches the background sweep loop. Safe to call repeatedly;
// only the first call starts anything.
func (s *RetentionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	// The ticker belongs to the goroutine so Stop never touches it.
	ticker := time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		// Sweep once at startup, then on every tick.
		s.sweep()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for it to finish.
func (s *RetentionSweeper) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *RetentionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.Retention)
	n, err := s.Store.PruneSimulations(ctx, cutoff)
	if err != nil {
		s.Log.Warn("retention sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.Log.Info("pruned simulation history", zap.Int64("removed", n))
	}
}
