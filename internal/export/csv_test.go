package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"job-ingest/internal/export"
	"job-ingest/internal/storage"
)

func sampleJob() storage.StructuredJob {
	return storage.StructuredJob{
		ID:           "job-1",
		FileName:     "jobs.csv",
		FileType:     "text/csv",
		UploadDate:   time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		Status:       storage.StatusProcessed,
		Title:        "Software Engineer",
		Company:      "Acme",
		Location:     "Cape Town",
		JobType:      "Full-time",
		Category:     "Information Technology",
		Skills:       []string{"Go", "SQL", "Docker"},
		Description:  "Build things",
		ClosingDate:  "2025-04-01",
		ContactEmail: "jobs@acme.example",
	}
}

func TestWriteCSV_HeaderOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	want := "jobID,title,company,location,jobType,category,skills," +
		"closingDate,contactEmail,contactPhone,uploadDate,fileName,status,description"
	if got := buf.String(); got != want {
		t.Errorf("header row = %q, want %q", got, want)
	}
}

func TestWriteCSV_QuotesAndJoinsFields(t *testing.T) {
	job := sampleJob()
	job.Description = `He said "hi", then left.`

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, []storage.StructuredJob{job}); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `"He said ""hi"", then left."`) {
		t.Errorf("inner quotes not doubled:\n%s", out)
	}
	if !strings.Contains(out, `"Go; SQL; Docker"`) {
		t.Errorf("skills not joined with semicolons:\n%s", out)
	}
	if !strings.Contains(out, "2025-03-10T09:30:00Z") {
		t.Errorf("upload date not RFC 3339:\n%s", out)
	}
}

func TestWriteCSV_RoundTripsThroughParser(t *testing.T) {
	job := sampleJob()
	job.Title = `Engineer, "Senior"`
	job.Description = "line one\nline two"

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, []storage.StructuredJob{job}); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("export is not parseable CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}

	row := records[1]
	if row[0] != "job-1" {
		t.Errorf("jobID = %q, want job-1", row[0])
	}
	if row[1] != job.Title {
		t.Errorf("title = %q, want %q", row[1], job.Title)
	}
	if row[13] != job.Description {
		t.Errorf("description = %q, want %q", row[13], job.Description)
	}
}

func TestWriteCSV_EmptyOptionalFields(t *testing.T) {
	job := sampleJob()
	job.ClosingDate = ""
	job.ContactEmail = ""
	job.ContactPhone = ""

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, []storage.StructuredJob{job}); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("export is not parseable CSV: %v", err)
	}
	row := records[1]
	for _, i := range []int{7, 8, 9} {
		if row[i] != "" {
			t.Errorf("column %d = %q, want empty", i, row[i])
		}
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	if got := export.Filename(now); got != "job_library_2025-03-10.csv" {
		t.Errorf("Filename() = %q, want job_library_2025-03-10.csv", got)
	}
}
