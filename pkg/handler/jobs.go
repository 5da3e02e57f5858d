package handler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yumyai/metadraft/pkg/model"
)

// JobStatus represents the lifecycle of a reconstruction request.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job keeps track of a reconstruction while the pipeline runs. The model
// itself is only reachable through JobManager.Model.
type Job struct {
	ID         string        `json:"job_id"`
	OrganismID string        `json:"organism_id"`
	Status     JobStatus     `json:"status"`
	Error      string        `json:"error,omitempty"`
	Report     *model.Report `json:"report,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	model *model.OrganismModel
}

// JobManager stores job states indexed by job ID.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager constructs a job manager with no jobs.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*Job),
	}
}

// NewJob registers a queued job for the organism.
func (m *JobManager) NewJob(organismID string) Job {
	now := time.Now()
	job := &Job{
		ID:         generateJobID(),
		OrganismID: organismID,
		Status:     JobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return *job
}

// SetRunning marks the job as running.
func (m *JobManager) SetRunning(jobID string) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobRunning
	})
}

// CompleteJob stores the model and marks the job complete.
func (m *JobManager) CompleteJob(jobID string, om *model.OrganismModel, report *model.Report) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobCompleted
		job.model = om
		job.Report = report
	})
}

// FailJob records a failure and attaches a user-facing error message.
func (m *JobManager) FailJob(jobID string, err error) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobFailed
		job.Error = err.Error()
	})
}

// GetJob returns a snapshot of the job.
func (m *JobManager) GetJob(jobID string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	snap := *job
	snap.model = nil
	return snap, true
}

// Model returns the finished model of a completed job.
func (m *JobManager) Model(jobID string) (*model.OrganismModel, JobStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, "", false
	}
	return job.model, job.Status, true
}

func (m *JobManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}

func (m *JobManager) updateJob(jobID string, update func(job *Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()
}

func generateJobID() string {
	return uuid.NewString()
}
