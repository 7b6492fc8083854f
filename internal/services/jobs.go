package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"medica-backend/internal/models"
)

// JobQueueName is the Redis list a job type is pushed to.
func JobQueueName(jobType string) string {
	return "queue:" + jobType
}

// Enqueuer records a background job and hands it to the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID uuid.UUID, jobType string, referenceID uuid.UUID, config interface{}) (*models.Job, error)
}

type jobStore interface {
	Create(ctx context.Context, j *models.Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type JobQueue struct {
	jobs  jobStore
	redis *redis.Client
}

func NewJobQueue(jobs jobStore, redisClient *redis.Client) *JobQueue {
	return &JobQueue{jobs: jobs, redis: redisClient}
}

func (q *JobQueue) Enqueue(ctx context.Context, userID uuid.UUID, jobType string, referenceID uuid.UUID, config interface{}) (*models.Job, error) {
	job := &models.Job{
		UserID:      userID,
		Type:        jobType,
		ReferenceID: referenceID,
	}
	if config != nil {
		raw, err := json.Marshal(config)
		if err != nil {
			return nil, fmt.Errorf("failed to encode job config: %w", err)
		}
		job.ConfigJSON = raw
	}

	if err := q.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := q.Push(ctx, job); err != nil {
		q.jobs.UpdateStatus(ctx, job.ID, "failed")
		return nil, err
	}
	return job, nil
}

// Push places an existing job on its queue.
func (q *JobQueue) Push(ctx context.Context, job *models.Job) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.redis.LPush(ctx, JobQueueName(job.Type), string(jobBytes)).Err(); err != nil {
		return fmt.Errorf("failed to queue job: %w", err)
	}
	return nil
}
