package ingest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStatus is the per-file state machine:
// pending → processing → success | error. Terminal states only change
// through explicit user action (remove, clear processed, re-add).
type FileStatus string

const (
	StatusPending    FileStatus = "pending"
	StatusProcessing FileStatus = "processing"
	StatusSuccess    FileStatus = "success"
	StatusError      FileStatus = "error"
)

// IncomingFile is a file handle as received from an upload request.
type IncomingFile struct {
	Name         string
	Mime         string
	Size         int64
	LastModified time.Time
	Content      []byte
}

// PendingFile tracks one queued file through the pipeline.
type PendingFile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Mime         string     `json:"mime"`
	Size         int64      `json:"size"`
	LastModified time.Time  `json:"lastModified"`
	Status       FileStatus `json:"status"`
	Message      string     `json:"message"`

	content []byte
}

var (
	ErrFileNotFound  = errors.New("file not found in queue")
	ErrFileNotIdle   = errors.New("file is processing or already succeeded and cannot be removed")
	ErrAlreadyActive = errors.New("a batch run is already in progress")
)

// Queue owns the pending-file list for one upload session. All mutation goes
// through its methods; observers are notified after every change.
type Queue struct {
	mu     sync.Mutex
	files  []*PendingFile
	notify func(PendingFile)
}

func NewQueue() *Queue {
	return &Queue{}
}

// OnChange registers a single observer called (outside the lock) with a copy
// of every file whose status or message changed.
func (q *Queue) OnChange(fn func(PendingFile)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notify = fn
}

// Add queues the given files. Files whose name matches an already-queued
// file are silently dropped, first-seen wins. The comparison is name-only:
// two different files sharing a name will collide. Returns how many were
// actually queued.
func (q *Queue) Add(incoming []IncomingFile) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	existing := make(map[string]bool, len(q.files))
	for _, f := range q.files {
		existing[f.Name] = true
	}

	added := 0
	for _, in := range incoming {
		if existing[in.Name] {
			continue
		}
		existing[in.Name] = true
		q.files = append(q.files, &PendingFile{
			ID:           newFileID(in),
			Name:         in.Name,
			Mime:         in.Mime,
			Size:         in.Size,
			LastModified: in.LastModified,
			Status:       StatusPending,
			Message:      "Waiting to be processed...",
			content:      in.Content,
		})
		added++
	}
	return added
}

// Remove drops a single file. Only pending and error files may be removed;
// a processing or succeeded file stays until "clear processed".
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, f := range q.files {
		if f.ID != id {
			continue
		}
		if f.Status != StatusPending && f.Status != StatusError {
			return ErrFileNotIdle
		}
		q.files = append(q.files[:i], q.files[i+1:]...)
		return nil
	}
	return ErrFileNotFound
}

// ClearProcessed removes every success and error entry, leaving pending and
// processing files untouched.
func (q *Queue) ClearProcessed() {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.files[:0]
	for _, f := range q.files {
		if f.Status == StatusPending || f.Status == StatusProcessing {
			kept = append(kept, f)
		}
	}
	q.files = kept
}

// PendingCount gates the bulk "process" action.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, f := range q.files {
		if f.Status == StatusPending {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the queue in intake order.
func (q *Queue) Snapshot() []PendingFile {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]PendingFile, 0, len(q.files))
	for _, f := range q.files {
		out = append(out, *f)
	}
	return out
}

// pendingIDs returns the ids of all pending files in intake order.
func (q *Queue) pendingIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ids []string
	for _, f := range q.files {
		if f.Status == StatusPending {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// get returns a copy of the file, including content, for processing.
func (q *Queue) get(id string) (PendingFile, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, f := range q.files {
		if f.ID == id {
			return *f, true
		}
	}
	return PendingFile{}, false
}

// setStatus is the single mutation funnel used while a batch runs.
func (q *Queue) setStatus(id string, status FileStatus, message string) {
	q.mu.Lock()
	var changed *PendingFile
	for _, f := range q.files {
		if f.ID == id {
			f.Status = status
			f.Message = message
			copied := *f
			changed = &copied
			break
		}
	}
	notify := q.notify
	q.mu.Unlock()

	if changed != nil && notify != nil {
		notify(*changed)
	}
}

// newFileID builds a stable unique id from name, modification time and a
// random tiebreaker. Uniqueness is probabilistic, not content-derived.
func newFileID(in IncomingFile) string {
	return fmt.Sprintf("%s-%d-%s", in.Name, in.LastModified.UnixMilli(), uuid.NewString())
}
