// Package jobs runs background bulk operations over todo lists. Each job is
// tracked by id in an in-memory registry; progress snapshots are published to
// an optional notifier so clients can follow along over the websocket hub.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/logger"
	"github.com/locvowork/todo_sync_sample/pkg/dataflow"
)

type JobState string

const (
	StateQueued    JobState = "queued"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// JobStatus is a snapshot of a background job. Values are copied out of the
// registry, so callers can hold them without locking.
type JobStatus struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	State       JobState   `json:"state"`
	Total       int        `json:"total"`
	Processed   int        `json:"processed"`
	Failed      int        `json:"failed"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Notifier receives a status snapshot after every state change.
type Notifier interface {
	PublishJob(status JobStatus)
}

// Runner owns the job registry and the worker configuration shared by all
// jobs.
type Runner struct {
	repo      domain.TodoRepository
	notifier  Notifier
	workers   int
	queueSize int
	retries   int
	backoff   func(int) time.Duration

	mu   sync.RWMutex
	jobs map[string]*JobStatus
}

func NewRunner(repo domain.TodoRepository, notifier Notifier, workers, queueSize int) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		repo:      repo,
		notifier:  notifier,
		workers:   workers,
		queueSize: queueSize,
		retries:   2,
		backoff:   dataflow.ConstantBackoff(100 * time.Millisecond),
		jobs:      make(map[string]*JobStatus),
	}
}

// Status returns a snapshot of the job, or ErrNotFound for unknown ids.
func (r *Runner) Status(jobID string) (*JobStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

// CompleteAll marks every item of the list completed in the background and
// returns the job id immediately. The job keeps running after the request
// context ends; cancellation is tied to the runner's own lifetime instead.
func (r *Runner) CompleteAll(ctx context.Context, listID string) (*JobStatus, error) {
	list, err := r.repo.GetListWithItems(ctx, listID)
	if err != nil {
		return nil, err
	}

	job := &JobStatus{
		ID:        uuid.NewString(),
		ListID:    list.ID,
		State:     StateQueued,
		Total:     len(list.Items),
		CreatedAt: time.Now(),
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
	r.publish(job.ID)

	go r.runCompleteAll(context.Background(), job.ID, list)

	snapshot := *job
	return &snapshot, nil
}

func (r *Runner) runCompleteAll(ctx context.Context, jobID string, list *domain.TodoList) {
	r.transition(jobID, func(job *JobStatus) {
		job.State = StateRunning
	})

	pending := make([]interface{}, 0, len(list.Items))
	for i := range list.Items {
		if !list.Items[i].Completed {
			pending = append(pending, &list.Items[i])
		}
	}
	alreadyDone := len(list.Items) - len(pending)
	if alreadyDone > 0 {
		r.transition(jobID, func(job *JobStatus) {
			job.Processed = alreadyDone
		})
	}

	results := dataflow.Map(ctx, dataflow.From(ctx, pending...),
		func(msg interface{}) (interface{}, error) {
			item := msg.(*domain.TodoItem)
			item.Completed = true
			if err := r.repo.UpdateItem(ctx, item); err != nil {
				return nil, err
			}
			return item, nil
		},
		dataflow.WithWorkers(r.workers),
		dataflow.WithBufferSize(r.queueSize),
		dataflow.WithRetry(r.retries, r.backoff),
		dataflow.WithErrorHandler(func(err error) bool {
			logger.WarnLog(ctx, "job %s: failed to complete item: %v", jobID, err)
			r.transition(jobID, func(job *JobStatus) {
				job.Failed++
			})
			return true
		}),
	)

	err := dataflow.ForEach(ctx, results, func(interface{}) error {
		r.transition(jobID, func(job *JobStatus) {
			job.Processed++
		})
		return nil
	})

	now := time.Now()
	r.transition(jobID, func(job *JobStatus) {
		job.CompletedAt = &now
		switch {
		case err != nil:
			job.State = StateFailed
			job.Error = err.Error()
		case job.Failed > 0:
			job.State = StateFailed
			job.Error = "some items could not be completed"
		default:
			job.State = StateCompleted
		}
	})
	logger.InfoLog(ctx, "job %s: finished for list %s", jobID, list.ID)
}

// transition mutates the job under the lock and publishes the new snapshot.
func (r *Runner) transition(jobID string, mutate func(*JobStatus)) {
	r.mu.Lock()
	if job, ok := r.jobs[jobID]; ok {
		mutate(job)
	}
	r.mu.Unlock()
	r.publish(jobID)
}

func (r *Runner) publish(jobID string) {
	if r.notifier == nil {
		return
	}
	if status, err := r.Status(jobID); err == nil {
		r.notifier.PublishJob(*status)
	}
}
