package refresh

import (
	"context"
	"sync"

	"github.com/folioreads/folio/pkg/jobs"
	"github.com/folioreads/folio/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

var (
	// ErrQueueStopped is returned by Enqueue after Shutdown has begun.
	ErrQueueStopped = errors.New("refresh queue is stopped")
	// ErrQueueFull is returned by Enqueue when the queue has no room left.
	ErrQueueFull = errors.New("refresh queue is full")
)

// Executor runs one refresh job to completion.
type Executor interface {
	Execute(ctx context.Context, job *models.Job) error
}

// Queue runs refresh jobs one at a time in submission order. A single worker
// goroutine drains a buffered channel, so at most one refresh touches the
// providers at any moment and nothing ever runs out of order.
type Queue struct {
	jobService *jobs.Service
	executor   Executor
	log        logger.Logger

	queue chan *models.Job
	done  chan struct{}

	mu        sync.Mutex
	stopped   bool
	runningID int
}

func NewQueue(jobService *jobs.Service, executor Executor, size int) *Queue {
	return &Queue{
		jobService: jobService,
		executor:   executor,
		log:        logger.New(),
		queue:      make(chan *models.Job, size),
		done:       make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (q *Queue) Start() {
	go q.run()
}

// Enqueue persists a queued job row and hands it to the worker. The job row
// is the authoritative record: callers poll it for progress. The returned
// error is ErrQueueStopped after shutdown and ErrQueueFull when the backlog
// limit is hit; in the full case the job row is marked failed so it doesn't
// read as stuck in queued forever.
func (q *Queue) Enqueue(ctx context.Context, data *models.JobRefreshData) (*models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return nil, errors.WithStack(ErrQueueStopped)
	}

	job := &models.Job{
		Type:       models.JobTypeMetadataRefresh,
		Status:     models.JobStatusQueued,
		DataParsed: data,
		LibraryID:  data.LibraryID,
	}
	err := q.jobService.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}

	select {
	case q.queue <- job:
		return job, nil
	default:
		q.failJob(ctx, job, ErrQueueFull)
		return nil, errors.WithStack(ErrQueueFull)
	}
}

// Running returns the id of the job currently executing, or 0 when idle.
func (q *Queue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.runningID
}

// Shutdown stops accepting new jobs and waits for the worker to drain what
// was already accepted, or for ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		close(q.queue)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for job := range q.queue {
		q.process(job)
	}
}

func (q *Queue) process(job *models.Job) {
	id, err := uuid.NewRandom()
	if err != nil {
		q.log.Err(err).Error("new uuid error")
		return
	}
	log := q.log.ID(id.String()).Root(logger.Data{"job_id": job.ID, "type": job.Type})
	ctx := log.WithContext(context.Background())

	q.mu.Lock()
	q.runningID = job.ID
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		q.runningID = 0
		q.mu.Unlock()
	}()

	job.Status = models.JobStatusRunning
	err = q.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status"},
	})
	if err != nil {
		log.Err(err).Error("update job error")
		return
	}

	// A panicking executor must not take the worker goroutine down with it;
	// the queue keeps serving later jobs.
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Errorf("refresh job panicked: %v", r)
			}
		}()
		err = q.executor.Execute(ctx, job)
	}()

	if err != nil {
		log.Err(err).Error("refresh job failed")
		q.failJob(ctx, job, err)
		return
	}

	job.Status = models.JobStatusCompleted
	err = q.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status"},
	})
	if err != nil {
		log.Err(err).Error("update job error")
	}
}

func (q *Queue) failJob(ctx context.Context, job *models.Job, cause error) {
	msg := cause.Error()
	job.Status = models.JobStatusFailed
	job.Error = &msg

	err := q.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status", "error"},
	})
	if err != nil {
		q.log.Err(err).Error("update job error")
	}
}
