package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

const jobQueueCapacity = 100

// Job represents one usage-reporting pass for a workspace and period
type Job struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Period      string // YYYY-MM
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a pending job for the workspace and billing period
func NewJob(workspaceID uuid.UUID, period string, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Period:      period,
		Status:      JobStatusPending,
		MaxRetries:  maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	j.Status = JobStatusRunning
	j.StartedAt = timePtr(time.Now())
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	j.Status = JobStatusSuccess
	j.CompletedAt = timePtr(time.Now())
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	j.Status = JobStatusFailed
	j.CompletedAt = timePtr(time.Now())
	j.Error = err
}

// ShouldRetry returns true if the job has retry budget left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry resets the job to pending with a retry deadline
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	j.NextRetryAt = timePtr(time.Now().Add(delay))
	j.Error = ""
}

func timePtr(t time.Time) *time.Time { return &t }

// JobExecutor is the interface for executing scheduled jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// Config holds scheduler configuration
type Config struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		JobTimeout:        5 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// Scheduler runs usage-reporting jobs on a bounded worker pool
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger

	jobs    chan *Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

func NewScheduler(config Config, executor JobExecutor, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, jobQueueCapacity),
	}
}

// Start launches the worker pool. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Usage scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop drains the workers, waiting up to the context deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.cancel()
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Usage scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Usage scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job, failing fast when the queue is full.
func (s *Scheduler) SubmitJob(job *Job) error {
	if !s.running.Load() {
		return ErrSchedulerNotRunning
	}

	if !s.enqueue(job) {
		return ErrJobQueueFull
	}
	s.logger.Debug("Job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("workspace_id", job.WorkspaceID.String()),
		zap.String("period", job.Period),
	)
	return nil
}

func (s *Scheduler) enqueue(job *Job) bool {
	select {
	case s.jobs <- job:
		return true
	default:
		return false
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.runJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *Job, workerID int) {
	// A retry that surfaced before its deadline goes back on the queue.
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		if !s.enqueue(job) {
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()))
		}
		return
	}

	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.executor.Execute(jobCtx, job)
	if err == nil {
		job.Complete()
		s.logger.Info("Job completed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("workspace_id", job.WorkspaceID.String()),
			zap.String("period", job.Period),
		)
		return
	}

	job.Fail(err.Error())
	s.logger.Error("Job failed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("workspace_id", job.WorkspaceID.String()),
		zap.Error(err),
	)

	if job.ShouldRetry() {
		job.ScheduleRetry(s.config.RetryDelay)
		if !s.enqueue(job) {
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()))
		}
	}
}
