package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"job-ingest/internal/llm"
	"job-ingest/internal/storage"
)

// Structurer is the structuring-call dependency. Satisfied by *llm.Service.
type Structurer interface {
	StructureJob(ctx context.Context, rawText string) (*llm.JobPosting, error)
}

// JobStore is the persistence dependency. Satisfied by *storage.DB.
type JobStore interface {
	InsertJobs(ctx context.Context, jobs []storage.StructuredJob) error
}

// Orchestrator drives pending files through extraction, structuring and
// persistence, strictly one file at a time in intake order. Failure
// isolation is per file: one file's error never blocks or rolls back
// another file's success.
type Orchestrator struct {
	queue       *Queue
	structurer  Structurer
	store       JobStore
	callTimeout time.Duration

	mu sync.Mutex // held for the duration of one batch run
}

func NewOrchestrator(queue *Queue, structurer Structurer, store JobStore, callTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		queue:       queue,
		structurer:  structurer,
		store:       store,
		callTimeout: callTimeout,
	}
}

// ProcessPending runs one batch over every file that is pending when the run
// starts. It reports whether at least one file succeeded, so the caller
// knows to refresh any downstream listing. Only one run may be active at a
// time; a second call while a batch is in flight returns ErrAlreadyActive.
func (o *Orchestrator) ProcessPending(ctx context.Context) (bool, error) {
	if !o.mu.TryLock() {
		return false, ErrAlreadyActive
	}
	defer o.mu.Unlock()

	ids := o.queue.pendingIDs()
	log.Printf("[Orchestrator] Starting batch run over %d pending file(s)", len(ids))

	anySucceeded := false
	for _, id := range ids {
		if o.processFile(ctx, id) {
			anySucceeded = true
		}
	}

	log.Printf("[Orchestrator] Batch run complete (any succeeded: %v)", anySucceeded)
	return anySucceeded, nil
}

// processFile takes one file through the full pipeline and reports success.
// Every failure is converted into an error status on the file's record;
// nothing escapes to abort the batch.
func (o *Orchestrator) processFile(ctx context.Context, id string) bool {
	file, ok := o.queue.get(id)
	if !ok {
		// Removed between run start and now; nothing to do.
		return false
	}

	o.queue.setStatus(id, StatusProcessing, "Extracting and structuring job content...")

	blocks, err := ExtractBlocks(file)
	if err != nil {
		log.Printf("[Orchestrator] Extraction failed for %s: %v", file.Name, err)
		o.queue.setStatus(id, StatusError, err.Error())
		return false
	}

	// All blocks of one file must structure successfully before anything is
	// persisted; a CSV with one bad row stores nothing.
	uploadDate := time.Now().UTC()
	jobs := make([]storage.StructuredJob, 0, len(blocks))
	for _, block := range blocks {
		posting, err := o.structureBlock(ctx, block)
		if err != nil {
			log.Printf("[Orchestrator] Structuring failed for %s: %v", file.Name, err)
			o.queue.setStatus(id, StatusError, err.Error())
			return false
		}
		jobs = append(jobs, assembleJob(file, posting, uploadDate))
	}

	if err := o.store.InsertJobs(ctx, jobs); err != nil {
		log.Printf("[Orchestrator] Insert failed for %s: %v", file.Name, err)
		o.queue.setStatus(id, StatusError, err.Error())
		return false
	}

	o.queue.setStatus(id, StatusSuccess,
		fmt.Sprintf("Successfully stored %d job(s) from this file.", len(jobs)))
	return true
}

func (o *Orchestrator) structureBlock(ctx context.Context, block string) (*llm.JobPosting, error) {
	callCtx := ctx
	if o.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
	}
	return o.structurer.StructureJob(callCtx, block)
}

func assembleJob(file PendingFile, posting *llm.JobPosting, uploadDate time.Time) storage.StructuredJob {
	return storage.StructuredJob{
		ID:           "job-" + uuid.NewString(),
		FileName:     file.Name,
		FileType:     file.Mime,
		UploadDate:   uploadDate,
		Status:       storage.StatusProcessed,
		Title:        posting.Title,
		Company:      posting.Company,
		Location:     posting.Location,
		JobType:      posting.JobType,
		Category:     posting.Category,
		Skills:       posting.Skills,
		Description:  posting.Description,
		ClosingDate:  posting.ClosingDate,
		ContactEmail: posting.ContactEmail,
		ContactPhone: posting.ContactPhone,
	}
}
