package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/bracecheck/internal/config"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/report"
)

func testOrchestrator(workers, queue int) *Orchestrator {
	cfg := config.Config{WorkerCount: workers, MaxQueueSize: queue, JobTTL: time.Hour}
	log := slog.New(slog.DiscardHandler)
	return NewOrchestrator(cfg, NewChecker(Options{MaxConcurrent: 2}, nil, nil, log), log)
}

func waitForJob(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		if snap.Status == StatusCompleted || snap.Status == StatusFailed {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	o := testOrchestrator(2, 10)
	o.Start(context.Background())
	defer o.Stop()

	clean := NewJob("ok.html", parser.FormatHTML, []byte("<script>f()</script>"))
	dirty := NewJob("bad.js", parser.FormatScript, []byte("function f() {\n"))
	for _, j := range []*Job{clean, dirty} {
		if err := o.Submit(j); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	snap := waitForJob(t, clean)
	if snap.Status != StatusCompleted || snap.Result.Verdict != report.Clean {
		t.Errorf("expected clean completed job, got %+v", snap)
	}
	snap = waitForJob(t, dirty)
	if snap.Result == nil || snap.Result.Verdict != report.Dirty {
		t.Fatalf("expected dirty result, got %+v", snap.Result)
	}
	if snap.Progress.TotalBlocks != 1 || snap.Progress.BlocksChecked != 1 || snap.Progress.Mismatches != 1 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if o.GetJob(dirty.ID) != dirty {
		t.Error("expected job to be retrievable by ID")
	}
}

func TestOrchestrator_FailedJob(t *testing.T) {
	o := testOrchestrator(1, 1)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("a.bin", parser.Format("binary"), []byte("x"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := waitForJob(t, job)
	if snap.Status != StatusFailed || len(snap.Progress.Errors) != 1 {
		t.Errorf("expected failed job with one error, got %+v", snap)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	o := testOrchestrator(1, 1)

	if err := o.Submit(NewJob("a.js", parser.FormatScript, nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	job := NewJob("b.js", parser.FormatScript, nil)
	err := o.Submit(job)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be marked failed")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}
