package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/bracecheck/internal/block"
)

// Worker processes a single document job.
type Worker struct {
	checker *Checker
	log     *slog.Logger
}

func NewWorker(checker *Checker, log *slog.Logger) *Worker {
	return &Worker{
		checker: checker,
		log:     log,
	}
}

// Process extracts and checks the job's document, recording progress on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	job.SetStatus(StatusExtracting, "extracting")
	src := block.SourceDocument{Name: job.Filename, Text: string(job.FileData())}

	doc, err := w.checker.CheckDocument(ctx, src, job.Format, job)
	if err != nil {
		log.Error("check failed", "error", err)
		job.AddError(fmt.Sprintf("check: %s", err))
		job.SetStatus(StatusFailed, "checking")
		return
	}

	job.Complete(doc)
	log.Info("check complete", "blocks", len(doc.Blocks), "verdict", doc.Verdict)
}
