package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a background analysis job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job represents one server-side analysis run. Results live only for the
// lifetime of the process; nothing is persisted across runs. Jobs are plain
// values; all mutation goes through the JobManager, which owns the lock.
type Job struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	Threshold   float64    `json:"threshold"`
	MinKeywords int        `json:"min_keywords"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	Result      *Result    `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobManager tracks in-flight and finished analysis jobs.
type JobManager struct {
	analysis *AnalysisService

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates a job manager running analyses through the given
// service.
func NewJobManager(analysis *AnalysisService) *JobManager {
	return &JobManager{
		analysis: analysis,
		jobs:     make(map[string]*Job),
	}
}

// Submit starts an analysis job over the uploaded CSV bytes and returns its
// initial snapshot immediately. The data is fully materialized before
// matching begins, so the caller may discard its copy.
func (m *JobManager) Submit(data []byte, opts Options) Job {
	job := &Job{
		ID:          uuid.New().String()[:8], // Short ID for convenience
		Status:      JobStatusPending,
		Threshold:   opts.Threshold,
		MinKeywords: opts.MinKeywords,
		StartedAt:   time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	runOpts := opts
	id := job.ID
	runOpts.Progress = func(done, total int) {
		m.setProgress(id, done, total)
	}

	go func() {
		m.setStatus(id, JobStatusRunning)

		result, err := m.analysis.Run(context.Background(), bytes.NewReader(data), runOpts)
		if err != nil {
			m.fail(id, err)
			return
		}
		m.complete(id, result)
	}()

	snap, _ := m.Get(id)
	return snap
}

// Get returns a snapshot of the job with the given ID.
func (m *JobManager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// List returns snapshots of all jobs, newest first.
func (m *JobManager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func (m *JobManager) setStatus(id string, status JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = status
	}
}

func (m *JobManager) setProgress(id string, done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Progress = done
		j.Total = total
	}
}

func (m *JobManager) complete(id string, result *Result) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = JobStatusCompleted
		j.Result = result
		j.CompletedAt = &now
	}
}

func (m *JobManager) fail(id string, err error) {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = JobStatusFailed
		j.Error = err.Error()
		j.CompletedAt = &now
	}
}
