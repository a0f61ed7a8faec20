// Package jobs runs background maintenance for the Quotation API on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/straye-as/quotation-api/internal/logger"
	"go.uber.org/zap"
)

// Job is one unit of scheduled maintenance
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobStatus describes a scheduled job and its most recent run
type JobStatus struct {
	Name     string
	Schedule string
	Next     time.Time
	LastRun  time.Time
	LastErr  error
}

type entry struct {
	id       cron.EntryID
	job      Job
	schedule string
	timeout  time.Duration
	lastRun  time.Time
	lastErr  error
}

// Scheduler runs jobs on cron expressions. Overlapping runs of a job are skipped
// and every run gets a context that is cancelled on Stop or after its timeout.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
}

// NewScheduler accepts five-field expressions, six fields with leading seconds, and descriptors like "@every 6h"
func NewScheduler(log *zap.Logger) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cronLogger := cron.VerbosePrintfLogger(zap.NewStdLog(log))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithParser(parser), cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger),
		)),
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler", zap.Int("jobs", len(s.Status())))
	s.cron.Start()
}

// Stop cancels running jobs and returns a context that is done once they return
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	s.cancel()
	return s.cron.Stop()
}

// Schedule registers job under its name. A zero timeout leaves runs bounded only by Stop.
func (s *Scheduler) Schedule(cronExpr string, job Job, timeout time.Duration) error {
	name := job.Name()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	e := &entry{job: job, schedule: cronExpr, timeout: timeout}
	id, err := s.cron.AddFunc(cronExpr, func() { _ = s.run(e) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	e.id = id
	s.entries[name] = e

	s.logger.Info("scheduled job",
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr),
		zap.Duration("timeout", timeout))
	return nil
}

// RunNow executes a registered job immediately on the calling goroutine
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}
	return s.run(e)
}

func (s *Scheduler) run(e *entry) error {
	log := logger.WithJob(s.logger, e.job.Name())

	ctx := s.ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	err := e.job.Run(ctx)

	s.mu.Lock()
	e.lastRun = start
	e.lastErr = err
	s.mu.Unlock()

	if err != nil {
		log.Error("scheduled job failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return err
	}
	log.Info("scheduled job completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Scheduler) Unschedule(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	s.cron.Remove(e.id)
	delete(s.entries, name)

	s.logger.Info("unscheduled job", zap.String("job_name", name))
	return nil
}

// Status lists the registered jobs sorted by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.entries))
	for name, e := range s.entries {
		out = append(out, JobStatus{
			Name:     name,
			Schedule: e.schedule,
			Next:     s.cron.Entry(e.id).Next,
			LastRun:  e.lastRun,
			LastErr:  e.lastErr,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
