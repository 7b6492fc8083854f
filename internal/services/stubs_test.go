package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"medica-backend/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.WSMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
}

type recordingNotifier struct {
	titles []string
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uuid.UUID, kind, title, body string) {
	n.titles = append(n.titles, title)
}

type recordingEnqueuer struct {
	jobs []models.Job
	err  error
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, userID uuid.UUID, jobType string, referenceID uuid.UUID, config interface{}) (*models.Job, error) {
	if e.err != nil {
		return nil, e.err
	}
	job := models.Job{ID: uuid.New(), UserID: userID, Type: jobType, ReferenceID: referenceID}
	e.jobs = append(e.jobs, job)
	return &job, nil
}
