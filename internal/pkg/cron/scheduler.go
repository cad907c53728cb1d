package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Job is a task run on a fixed interval. A run that is still in progress when
// the next tick fires makes that tick a no-op.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // zero means the run is bounded only by Stop
	Fn       func(ctx context.Context) error

	running atomic.Bool
}

// Scheduler runs registered jobs until stopped
type Scheduler struct {
	mu      sync.Mutex
	jobs    []*Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. Jobs added after Start are not scheduled.
func (s *Scheduler) AddJob(name string, interval time.Duration, timeout time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &Job{
		Name:     name,
		Interval: interval,
		Timeout:  timeout,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval, "timeout", timeout)
}

// Start runs every job once and then on its interval
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels in-flight runs and waits for every job loop to exit. It is
// safe to call more than once.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.execute(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Debug("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.execute(s.ctx, job)
		}
	}
}

// execute runs job once, skipping if a previous run has not finished
func (s *Scheduler) execute(ctx context.Context, job *Job) {
	if !job.running.CompareAndSwap(false, true) {
		slog.Warn("Cron job still running, skipping tick", "name", job.Name)
		return
	}
	defer job.running.Store(false)

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := safeRun(ctx, job); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
}

func safeRun(ctx context.Context, job *Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return job.Fn(ctx)
}

// RunOnce runs every registered job once, synchronously
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]*Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.execute(ctx, job)
	}
}
