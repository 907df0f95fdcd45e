// Package schedule runs retention cleanup on the cron schedules saved with
// each library's policy.
package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"scribe/internal/db"
	"scribe/internal/event"
	"scribe/internal/ops"
)

// Scheduler registers one cron entry per enabled retention policy and
// applies cleanup when each fires. A fired job reloads the policy through the
// normal cleanup path, so edits between fires take effect without a restart;
// schedule-expression changes need Reload.
type Scheduler struct {
	database *sql.DB
	bus      *event.Bus
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID // library -> entry
	running bool

	// runCtx is the context Start was given. Jobs registered later (via
	// Reload) still run under it, not under the reload caller's context.
	runCtx context.Context
}

// NewScheduler creates a cleanup scheduler over the given database.
func NewScheduler(database *sql.DB, bus *event.Bus) *Scheduler {
	return &Scheduler{
		database: database,
		bus:      bus,
		logger:   slog.Default().With("component", "schedule"),
		cron:     cron.New(),
		entries:  make(map[string]cron.EntryID),
	}
}

// Start loads the enabled policies, registers their schedules, and starts the
// cron loop. Zero enabled policies is fine; the loop idles until Reload adds
// some. The scheduler stops itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Re-registering from scratch keeps restart cycles from stacking
	// duplicate entries.
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = make(map[string]cron.EntryID)
	s.runCtx = ctx

	if err := s.registerLocked(ctx); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("cleanup scheduler started", "policies", len(s.entries))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Reload re-reads the enabled policies and replaces the registered entries.
// Call it after a policy save so schedule changes take effect.
func (s *Scheduler) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = make(map[string]cron.EntryID)

	return s.registerLocked(ctx)
}

func (s *Scheduler) registerLocked(ctx context.Context) error {
	policies, err := db.ListEnabledPolicies(ctx, s.database)
	if err != nil {
		return err
	}

	runCtx := s.runCtx
	if runCtx == nil {
		runCtx = context.Background()
	}

	for _, p := range policies {
		if p.Schedule == "" {
			continue
		}
		if _, err := cron.ParseStandard(p.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q for library %q: %w", p.Schedule, p.Library, err)
		}

		library := p.Library
		id, err := s.cron.AddFunc(p.Schedule, func() {
			s.runCleanup(runCtx, library)
		})
		if err != nil {
			return fmt.Errorf("schedule cleanup for library %q: %w", library, err)
		}
		s.entries[library] = id
	}

	return nil
}

// runCleanup applies one scheduled cleanup cycle for a library.
func (s *Scheduler) runCleanup(ctx context.Context, library string) {
	s.logger.Info("scheduled cleanup starting", "library", library)

	out, err := ops.CleanupApply(ctx, s.database, s.bus, ops.CleanupInput{Library: library})
	if err != nil {
		s.logger.Error("scheduled cleanup failed", "library", library, "error", err)
		return
	}

	if out.Deleted > 0 {
		s.logger.Info("scheduled cleanup completed",
			"library", library, "deleted", out.Deleted)
	} else {
		s.logger.Debug("scheduled cleanup completed, nothing to delete",
			"library", library)
	}
}

// Stop halts the cron loop and waits for any running cleanup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("cleanup scheduler stopped")
}

// IsRunning reports whether the cron loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the earliest upcoming fire time across all registered
// libraries, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next *time.Time
	for _, entry := range s.cron.Entries() {
		if entry.Next.IsZero() {
			continue
		}
		t := entry.Next
		if next == nil || t.Before(*next) {
			next = &t
		}
	}
	return next
}
