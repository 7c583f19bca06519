// Package scheduler runs the pipeline periodically in serve mode and serializes
// scheduled runs with on-demand enrichment requests.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/mailscope/pkg/pipeline"
)

//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner

// Runner is the pipeline in its batch modes
type Runner interface {
	Ingest(ctx context.Context) (pipeline.RunStats, error)
	EnrichBacklog(ctx context.Context, includeSplit bool, limit int) (pipeline.RunStats, error)
	EnrichID(ctx context.Context, id string) (pipeline.RunStats, error)
}

// Params holds scheduler dependencies and settings
type Params struct {
	Runner     Runner
	Interval   time.Duration // time between runs, defaults to 30m
	BatchLimit int           // backlog items per run, 0 means no limit
	FetchNew   bool          // fetch from sources before the backlog run
}

// Status describes the last completed run
type Status struct {
	Running   bool              `json:"running"`
	Runs      int               `json:"runs"`
	LastRun   time.Time         `json:"last_run"`
	LastStats pipeline.RunStats `json:"last_stats"`
	LastError string            `json:"last_error,omitempty"`
}

// Scheduler manages periodic pipeline runs
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	batchLimit int
	fetchNew   bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
	runMu  sync.Mutex // one batch at a time

	statusMu sync.RWMutex
	status   Status
}

// NewScheduler creates a new scheduler instance
func NewScheduler(p Params) *Scheduler {
	if p.Interval == 0 {
		p.Interval = 30 * time.Minute
	}
	return &Scheduler{runner: p.Runner, interval: p.Interval, batchLimit: p.BatchLimit, fetchNew: p.FetchNew}
}

// Start begins the scheduler, the first run starts immediately
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.worker(ctx)

	lgr.Printf("[INFO] scheduler started with interval %v, batch limit %d, fetch new %v",
		s.interval, s.batchLimit, s.fetchNew)
}

// Stop gracefully stops the scheduler and waits for the current run
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs the optional fetch and one backlog pass, waiting for any run in progress
func (s *Scheduler) RunOnce(ctx context.Context) pipeline.RunStats {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.setRunning(true)

	var stats pipeline.RunStats
	var errs []error
	if s.fetchNew {
		st, err := s.runner.Ingest(ctx)
		if err != nil {
			lgr.Printf("[WARN] scheduled fetch failed, %v", err)
			errs = append(errs, fmt.Errorf("fetch: %w", err))
		}
		stats = st
	}
	if ctx.Err() == nil {
		st, err := s.runner.EnrichBacklog(ctx, false, s.batchLimit)
		if err != nil {
			lgr.Printf("[WARN] scheduled backlog run failed, %v", err)
			errs = append(errs, fmt.Errorf("backlog: %w", err))
		}
		stats.Add(st)
	}

	s.finish(stats, errs)
	return stats
}

// EnrichNow forces enrichment of one document, waiting for any run in progress
func (s *Scheduler) EnrichNow(ctx context.Context, id string) (pipeline.RunStats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	lgr.Printf("[INFO] triggered enrichment of %s", id)
	stats, err := s.runner.EnrichID(ctx, id)
	if err != nil {
		return stats, fmt.Errorf("enrich %s: %w", id, err)
	}
	return stats, nil
}

// Status returns state of the last completed run
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Scheduler) setRunning(running bool) {
	s.statusMu.Lock()
	s.status.Running = running
	s.statusMu.Unlock()
}

func (s *Scheduler) finish(stats pipeline.RunStats, errs []error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = false
	s.status.Runs++
	s.status.LastRun = time.Now()
	s.status.LastStats = stats
	s.status.LastError = ""
	if len(errs) > 0 {
		s.status.LastError = errors.Join(errs...).Error()
	}
}
