package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"job-ingest/internal/llm"
	"job-ingest/internal/storage"
)

type stubStructurer struct {
	fn    func(rawText string) (*llm.JobPosting, error)
	calls int
}

func (s *stubStructurer) StructureJob(ctx context.Context, rawText string) (*llm.JobPosting, error) {
	s.calls++
	if s.fn != nil {
		return s.fn(rawText)
	}
	return postingFor(rawText), nil
}

func postingFor(rawText string) *llm.JobPosting {
	return &llm.JobPosting{
		Title:       "Engineer",
		Company:     "Acme",
		Location:    "Cape Town",
		JobType:     "Full-time",
		Category:    "Information Technology",
		Skills:      []string{"Go", "SQL", "Docker", "Kubernetes", "Postgres"},
		Description: rawText,
	}
}

type stubStore struct {
	batches [][]storage.StructuredJob
	failErr error
}

func (s *stubStore) InsertJobs(ctx context.Context, jobs []storage.StructuredJob) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.batches = append(s.batches, jobs)
	return nil
}

func queueWithTextFiles(contents map[string]string) *Queue {
	q := NewQueue()
	var files []IncomingFile
	for name, body := range contents {
		files = append(files, IncomingFile{
			Name:         name,
			Mime:         "text/plain",
			Size:         int64(len(body)),
			LastModified: time.Now(),
			Content:      []byte(body),
		})
	}
	q.Add(files)
	return q
}

func statusByName(t *testing.T, q *Queue, name string) PendingFile {
	t.Helper()
	for _, f := range q.Snapshot() {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("file %q not in queue", name)
	return PendingFile{}
}

func TestProcessPending_PerFileIsolation(t *testing.T) {
	q := NewQueue()
	q.Add([]IncomingFile{
		{Name: "one.txt", Mime: "text/plain", LastModified: time.Now(), Content: []byte("first posting")},
		{Name: "two.txt", Mime: "text/plain", LastModified: time.Now(), Content: []byte("second posting")},
		{Name: "three.txt", Mime: "text/plain", LastModified: time.Now(), Content: []byte("third posting")},
	})

	structurer := &stubStructurer{fn: func(rawText string) (*llm.JobPosting, error) {
		if strings.Contains(rawText, "second") {
			return nil, &llm.ServiceError{Provider: llm.ProviderOpenAI, StatusCode: 502, Message: "bad gateway"}
		}
		return postingFor(rawText), nil
	}}
	store := &stubStore{}

	orch := NewOrchestrator(q, structurer, store, 0)
	anySucceeded, err := orch.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending() error: %v", err)
	}
	if !anySucceeded {
		t.Error("anySucceeded = false, want true")
	}

	if got := statusByName(t, q, "one.txt").Status; got != StatusSuccess {
		t.Errorf("one.txt status = %v, want success", got)
	}
	two := statusByName(t, q, "two.txt")
	if two.Status != StatusError {
		t.Errorf("two.txt status = %v, want error", two.Status)
	}
	if !strings.Contains(two.Message, "bad gateway") {
		t.Errorf("two.txt message %q should carry the upstream failure", two.Message)
	}
	if got := statusByName(t, q, "three.txt").Status; got != StatusSuccess {
		t.Errorf("three.txt status = %v, want success", got)
	}

	// Only the two successful files reached the store.
	if len(store.batches) != 2 {
		t.Fatalf("store received %d insert batches, want 2", len(store.batches))
	}
	for _, batch := range store.batches {
		for _, job := range batch {
			if strings.Contains(job.Description, "second") {
				t.Errorf("failed file's record was persisted: %+v", job)
			}
		}
	}
}

func TestProcessPending_CSVMultipleRows(t *testing.T) {
	csv := "title,company,description\n" +
		"Engineer,Acme,Build things\n" +
		",,\n" +
		"Designer,Beta,Design things\n"

	q := NewQueue()
	q.Add([]IncomingFile{{Name: "jobs.csv", Mime: "text/csv", LastModified: time.Now(), Content: []byte(csv)}})

	structurer := &stubStructurer{}
	store := &stubStore{}
	orch := NewOrchestrator(q, structurer, store, 0)

	anySucceeded, _ := orch.ProcessPending(context.Background())
	if !anySucceeded {
		t.Fatal("anySucceeded = false, want true")
	}

	if structurer.calls != 2 {
		t.Errorf("structuring calls = %d, want 2 (blank row excluded)", structurer.calls)
	}
	if len(store.batches) != 1 || len(store.batches[0]) != 2 {
		t.Fatalf("store batches = %v, want one batch of 2 records", store.batches)
	}

	f := statusByName(t, q, "jobs.csv")
	if f.Status != StatusSuccess {
		t.Errorf("file status = %v, want success", f.Status)
	}
	if !strings.Contains(f.Message, "2 job(s)") {
		t.Errorf("success message %q should mention 2 job(s)", f.Message)
	}

	// Records carry fresh ids and the file's metadata.
	ids := map[string]bool{}
	for _, job := range store.batches[0] {
		if ids[job.ID] {
			t.Errorf("duplicate job id %q", job.ID)
		}
		ids[job.ID] = true
		if job.FileName != "jobs.csv" || job.Status != storage.StatusProcessed {
			t.Errorf("record metadata wrong: %+v", job)
		}
	}
}

func TestProcessPending_AllOrNothingPerFile(t *testing.T) {
	csv := "title,company,description\n" +
		"Engineer,Acme,good row\n" +
		"Designer,Beta,poison row\n"

	q := NewQueue()
	q.Add([]IncomingFile{{Name: "jobs.csv", Mime: "text/csv", LastModified: time.Now(), Content: []byte(csv)}})

	structurer := &stubStructurer{fn: func(rawText string) (*llm.JobPosting, error) {
		if strings.Contains(rawText, "poison") {
			return nil, &llm.MalformedResponseError{Reason: "required field is empty: title"}
		}
		return postingFor(rawText), nil
	}}
	store := &stubStore{}
	orch := NewOrchestrator(q, structurer, store, 0)

	anySucceeded, _ := orch.ProcessPending(context.Background())
	if anySucceeded {
		t.Error("anySucceeded = true, want false")
	}
	if len(store.batches) != 0 {
		t.Errorf("store received %d batches, want 0 (partial success within a file must not persist)", len(store.batches))
	}
	if got := statusByName(t, q, "jobs.csv").Status; got != StatusError {
		t.Errorf("file status = %v, want error", got)
	}
}

func TestProcessPending_ExtractionFailureNeverReachesServices(t *testing.T) {
	q := NewQueue()
	q.Add([]IncomingFile{{Name: "archive.zip", Mime: "application/zip", LastModified: time.Now(), Content: []byte("zzz")}})

	structurer := &stubStructurer{}
	store := &stubStore{}
	orch := NewOrchestrator(q, structurer, store, 0)

	anySucceeded, _ := orch.ProcessPending(context.Background())
	if anySucceeded {
		t.Error("anySucceeded = true, want false")
	}
	if structurer.calls != 0 {
		t.Errorf("structurer called %d times for an unsupported file, want 0", structurer.calls)
	}
	if len(store.batches) != 0 {
		t.Errorf("store received %d batches, want 0", len(store.batches))
	}

	f := statusByName(t, q, "archive.zip")
	if f.Status != StatusError {
		t.Errorf("file status = %v, want error", f.Status)
	}
	if !strings.Contains(f.Message, "application/zip") {
		t.Errorf("error message %q should name the mime type", f.Message)
	}
}

func TestProcessPending_BlankImageMakesNoCalls(t *testing.T) {
	// A whitespace-only text stands in for an unreadable scan: extraction
	// yields nothing, so neither the structurer nor the store is called.
	q := queueWithTextFiles(map[string]string{"blank.txt": "   \n  "})

	structurer := &stubStructurer{}
	store := &stubStore{}
	orch := NewOrchestrator(q, structurer, store, 0)

	orch.ProcessPending(context.Background())

	f := statusByName(t, q, "blank.txt")
	if f.Status != StatusError {
		t.Errorf("file status = %v, want error", f.Status)
	}
	if !strings.Contains(f.Message, "no readable content") {
		t.Errorf("message %q should report unreadable content", f.Message)
	}
	if structurer.calls != 0 || len(store.batches) != 0 {
		t.Errorf("no downstream calls expected, got structurer=%d store=%d", structurer.calls, len(store.batches))
	}
}

func TestProcessPending_InsertFailureMarksFileError(t *testing.T) {
	q := queueWithTextFiles(map[string]string{"one.txt": "a posting"})

	store := &stubStore{failErr: errors.New("job store write failed: connection refused")}
	orch := NewOrchestrator(q, &stubStructurer{}, store, 0)

	anySucceeded, _ := orch.ProcessPending(context.Background())
	if anySucceeded {
		t.Error("anySucceeded = true, want false")
	}

	f := statusByName(t, q, "one.txt")
	if f.Status != StatusError {
		t.Errorf("file status = %v, want error", f.Status)
	}
	if !strings.Contains(f.Message, "connection refused") {
		t.Errorf("message %q should carry the store failure", f.Message)
	}
}

func TestProcessPending_SecondRunSkipsFinishedFiles(t *testing.T) {
	q := queueWithTextFiles(map[string]string{"one.txt": "a posting"})

	structurer := &stubStructurer{}
	store := &stubStore{}
	orch := NewOrchestrator(q, structurer, store, 0)

	orch.ProcessPending(context.Background())
	orch.ProcessPending(context.Background())

	if structurer.calls != 1 {
		t.Errorf("structurer called %d times across two runs, want 1 (terminal states do not re-enter)", structurer.calls)
	}
}
