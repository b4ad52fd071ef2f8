package pipeline

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/report"
)

// JobStatus represents the state of a check job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusChecking   JobStatus = "checking"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single asynchronous document check.
type Job struct {
	mu sync.Mutex

	ID       string        `json:"job_id"`
	Status   JobStatus     `json:"status"`
	Phase    string        `json:"phase"`
	Filename string        `json:"filename"`
	Format   parser.Format `json:"format"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *report.Document
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalBlocks   int      `json:"total_blocks"`
	BlocksChecked int      `json:"blocks_checked"`
	Mismatches    int      `json:"mismatches"`
	Errors        []string `json:"errors"`
}

// NewJob creates a queued job for data.
func NewJob(filename string, format parser.Format, data []byte) *Job {
	now := time.Now()
	j := &Job{
		ID:          uuid.NewString(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Format:      format,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	j.fileData = data
	return j
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Extracted records the number of blocks found and moves the job to checking.
func (j *Job) Extracted(blocks int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalBlocks = blocks
	j.Status = StatusChecking
	j.Phase = "checking"
	j.UpdatedAt = time.Now()
}

// Checked records one finished block report.
func (j *Job) Checked(r block.BlockReport) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.BlocksChecked++
	j.Progress.Mismatches += r.BraceMismatchCount + r.ParenMismatchCount + r.BracketMismatchCount
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Complete stores the finished report, releases the file bytes and marks the job done.
func (j *Job) Complete(doc report.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &doc
	j.fileData = nil
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string           `json:"job_id"`
	Status   JobStatus        `json:"status"`
	Phase    string           `json:"phase"`
	Filename string           `json:"filename"`
	Format   parser.Format    `json:"format"`
	Progress Progress         `json:"progress"`
	Result   *report.Document `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Format:   j.Format,
		Progress: Progress{
			TotalBlocks:   j.Progress.TotalBlocks,
			BlocksChecked: j.Progress.BlocksChecked,
			Mismatches:    j.Progress.Mismatches,
			Errors:        slices.Clone(errs),
		},
		Result: j.result,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
