// Package scheduler keeps the Orange Book tables warm. It loads them at
// startup, downloads a new archive every day and warns when the tables go stale.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/clock"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const (
	DefaultRefreshAt   = "06:00"
	DefaultLoadTimeout = 2 * time.Minute

	// staleAfter leaves an hour of slack past the daily refresh
	staleAfter      = 25 * time.Hour
	monitorInterval = time.Hour
)

// Options configures a Scheduler
type Options struct {
	// RefreshAt is the daily refresh time, "HH:MM" in the scheduler location
	RefreshAt   string
	LoadTimeout time.Duration
	Location    *time.Location
	Clock       clock.Clock
}

// Scheduler handles Orange Book refreshes and staleness monitoring
type Scheduler struct {
	store       interfaces.OrangeBookStore
	scheduler   *gocron.Scheduler
	refreshAt   string
	loadTimeout time.Duration
	clock       clock.Clock

	stopOnce sync.Once
	stop     chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.OrangeBookStore, opts Options) *Scheduler {
	s := &Scheduler{
		store:       store,
		refreshAt:   opts.RefreshAt,
		loadTimeout: opts.LoadTimeout,
		clock:       opts.Clock,
		stop:        make(chan struct{}),
	}

	if s.refreshAt == "" {
		s.refreshAt = DefaultRefreshAt
	}
	if s.loadTimeout <= 0 {
		s.loadTimeout = DefaultLoadTimeout
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	location := opts.Location
	if location == nil {
		location = time.Local
	}
	s.scheduler = gocron.NewScheduler(location)

	return s
}

// Start loads the tables once, then schedules the daily refresh. A failed
// initial load is logged only: requests load lazily and surface the error.
func (s *Scheduler) Start() error {
	if err := s.warmUp(); err != nil {
		logging.Error("Failed to perform initial Orange Book load", "error", err)
	}

	_, err := s.scheduler.Every(1).Day().At(s.refreshAt).Do(func() {
		if err := s.refresh(); err != nil {
			logging.Error("Scheduled Orange Book refresh failed", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule Orange Book refresh", "at", s.refreshAt, "error", err)
		return fmt.Errorf("failed to schedule refresh at %s: %w", s.refreshAt, err)
	}

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	logging.Info("Scheduler started", "refresh_at", s.refreshAt)
	return nil
}

// Stop stops the scheduled jobs and the staleness monitor
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.scheduler.Stop()
	})
}

// warmUp loads the tables, from disk if the cache is fresh
func (s *Scheduler) warmUp() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
	defer cancel()

	start := time.Now()
	tables, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("initial load failed: %w", err)
	}

	logging.Info("Orange Book warm-up completed",
		"duration", time.Since(start).String(),
		"source", tables.Source,
		"patents", len(tables.Patents))
	return nil
}

// refresh downloads a new archive regardless of cache age
func (s *Scheduler) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
	defer cancel()

	logging.Info(fmt.Sprintf("Starting Orange Book refresh at: %s", s.clock.Now().Format(time.RFC3339)))
	start := time.Now()

	tables, err := s.store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	logging.Info("Orange Book refresh completed",
		"duration", time.Since(start).String(),
		"products", len(tables.Products),
		"patents", len(tables.Patents),
		"exclusivities", len(tables.Exclusivities))
	return nil
}

// isStale reports whether the tables are missing or older than staleAfter
func (s *Scheduler) isStale() bool {
	tables := s.store.Tables()
	if tables == nil {
		return true
	}
	return s.clock.Now().Sub(tables.LoadedAt) > staleAfter
}

// startHealthMonitoring warns every hour while the tables are stale
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(monitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if s.isStale() {
					logging.Warn("Orange Book tables haven't been refreshed in over 25 hours")
				}
			}
		}
	}()
}
