// Package scheduler runs periodic scans on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/better-bets/internal/logger"
	"github.com/yourusername/better-bets/internal/service"
)

const minIntervalSeconds = 5

// Scanner runs one combined scan
type Scanner interface {
	Scan(ctx context.Context, req service.ScanRequest) (*service.ScanResult, error)
}

// ResultHandler receives every successful scheduled scan
type ResultHandler func(req service.ScanRequest, result *service.ScanResult)

type watchJob struct {
	req      service.ScanRequest
	interval time.Duration
}

// Scheduler manages scheduled watch scans
type Scheduler struct {
	cron            *cron.Cron
	scanner         Scanner
	logger          *logrus.Logger
	onResult        ResultHandler
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobs            map[cron.EntryID]watchJob
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler; onResult may be nil
func NewScheduler(scanner Scanner, onResult ResultHandler, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		scanner:         scanner,
		logger:          log,
		onResult:        onResult,
		jobIDs:          make([]cron.EntryID, 0),
		jobs:            make(map[cron.EntryID]watchJob),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleWatch schedules a scan of req every intervalSeconds (minimum 5)
func (s *Scheduler) ScheduleWatch(intervalSeconds int, req service.ScanRequest) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return 0, fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if req.Sport == "" {
		return 0, fmt.Errorf("watch job requires a sport")
	}

	if intervalSeconds < minIntervalSeconds {
		intervalSeconds = minIntervalSeconds
	}
	interval := time.Duration(intervalSeconds) * time.Second

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", intervalSeconds), func() {
		s.runScan(req, interval)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.jobs[entryID] = watchJob{req: req, interval: interval}
	s.logger.WithFields(logrus.Fields{
		"sport":            req.Sport,
		"interval_seconds": intervalSeconds,
	}).Info("Scheduled watch scan")

	return entryID, nil
}

// RunNow runs every scheduled job once, synchronously
func (s *Scheduler) RunNow() {
	s.mu.RLock()
	jobs := make([]watchJob, 0, len(s.jobIDs))
	for _, id := range s.jobIDs {
		jobs = append(jobs, s.jobs[id])
	}
	s.mu.RUnlock()

	for _, job := range jobs {
		s.runScan(job.req, job.interval)
	}
}

func (s *Scheduler) runScan(req service.ScanRequest, interval time.Duration) {
	// a scan must finish before the next tick is due
	timeout := interval - time.Second
	if timeout <= 0 {
		timeout = interval
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := s.scanner.Scan(ctx, req)
	if err != nil {
		s.logger.WithField("sport", req.Sport).WithError(err).Error("Scheduled scan failed")
		return
	}

	if s.onResult != nil {
		s.onResult(req, result)
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running scans up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	// released before waiting so a running scan can still read scheduler state
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run, zero when stopped
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
