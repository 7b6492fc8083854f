package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"medica-backend/internal/models"
	"medica-backend/internal/services"
)

const defaultMaxRetries = 3

type jobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateError(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error
	ListPending(ctx context.Context, limit int) ([]models.Job, error)
}

type appointmentLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type confirmationMailer interface {
	SendAppointmentConfirmation(to string, a services.AppointmentEmail) error
}

type reportExtractor interface {
	Extract(ctx context.Context, job *models.Job) error
	MarkFailed(ctx context.Context, job *models.Job)
}

// Deps are the collaborators the job handlers need.
type Deps struct {
	Jobs         jobStore
	Appointments appointmentLookup
	Users        userLookup
	Email        confirmationMailer
	Reports      reportExtractor
	Publisher    services.Publisher
}

type Pool struct {
	redis        *redis.Client
	jobRepo      jobStore
	appointments appointmentLookup
	users        userLookup
	email        confirmationMailer
	reports      reportExtractor
	publisher    services.Publisher
	workerCount  int

	// requeue puts a failed job back on its queue after the backoff.
	requeue func(job *models.Job, backoff time.Duration)

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewPool(redisClient *redis.Client, deps Deps, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		redis:        redisClient,
		jobRepo:      deps.Jobs,
		appointments: deps.Appointments,
		users:        deps.Users,
		email:        deps.Email,
		reports:      deps.Reports,
		publisher:    deps.Publisher,
		workerCount:  workerCount,
		stopChan:     make(chan struct{}),
	}
	p.requeue = p.requeueAfter
	return p
}

func queues() []string {
	return []string{
		services.JobQueueName(models.JobAppointmentConfirmation),
		services.JobQueueName(models.JobReportExtraction),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, queues())
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

// Stop signals the workers and waits for in-progress jobs to finish. A worker
// blocked in BLPOP exits when its poll times out.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	p.wg.Wait()
}

// Recover re-queues jobs left pending in the database, e.g. after Redis lost
// its lists during a restart.
func (p *Pool) Recover(ctx context.Context) (int, error) {
	pending, err := p.jobRepo.ListPending(ctx, 500)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	n := 0
	for i := range pending {
		job := pending[i]
		data, err := json.Marshal(&job)
		if err != nil {
			continue
		}
		if err := p.redis.LPush(ctx, services.JobQueueName(job.Type), string(data)).Err(); err != nil {
			return n, fmt.Errorf("failed to requeue job %s: %w", job.ID, err)
		}
		n++
	}
	return n, nil
}

func (p *Pool) worker(id int, queues []string) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 5s timeout so Stop is noticed promptly
		result, err := p.redis.BLPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Printf("Worker %d: queue poll failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		p.run(ctx, id, &job)

		p.redis.Del(ctx, lockKey)
	}
}

// run executes one dequeued job and records the outcome.
func (p *Pool) run(ctx context.Context, workerID int, job *models.Job) {
	if stored, err := p.jobRepo.GetByID(ctx, job.ID); err == nil {
		if stored.Status == "completed" || stored.Status == "failed" {
			return
		}
	}

	log.Printf("Worker %d: processing job %s (type: %s)", workerID, job.ID, job.Type)
	p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

	if err := p.process(ctx, job); err != nil {
		p.handleFailure(ctx, job, err)
		return
	}
	p.handleSuccess(ctx, job)
}

func (p *Pool) process(ctx context.Context, job *models.Job) error {
	switch job.Type {
	case models.JobAppointmentConfirmation:
		return p.sendConfirmation(ctx, job)
	case models.JobReportExtraction:
		return p.reports.Extract(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Pool) sendConfirmation(ctx context.Context, job *models.Job) error {
	appt, err := p.appointments.GetByID(ctx, job.ReferenceID)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	if appt.Status == "cancelled" {
		return nil
	}

	user, err := p.users.GetByID(ctx, appt.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return p.email.SendAppointmentConfirmation(user.Email, services.AppointmentEmail{
		PatientName: appt.FullName,
		DoctorName:  appt.DoctorName,
		Specialty:   appt.Specialty,
		Date:        appt.Date,
		TimeSlot:    appt.TimeSlot,
	})
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")
	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	maxRetries := job.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	if job.RetryCount < maxRetries {
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		p.requeue(job, backoff)
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
	if job.Type == models.JobReportExtraction {
		p.reports.MarkFailed(ctx, job)
	}

	p.publisher.Publish(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.JobErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: errMsg,
		},
	})
}

func (p *Pool) requeueAfter(job *models.Job, backoff time.Duration) {
	jobBytes, _ := json.Marshal(job)
	time.AfterFunc(backoff, func() {
		p.redis.LPush(context.Background(), services.JobQueueName(job.Type), string(jobBytes))
	})
}
