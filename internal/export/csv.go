// Package export renders the job library as CSV for the downstream board UI.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"job-ingest/internal/storage"
)

// Column order is fixed; consumers of the export depend on it.
var headers = []string{
	"jobID", "title", "company", "location", "jobType", "category", "skills",
	"closingDate", "contactEmail", "contactPhone", "uploadDate", "fileName",
	"status", "description",
}

// WriteCSV writes the given jobs in the fixed export format. Every text
// field is quoted with inner double quotes doubled (RFC 4180), so values
// containing quotes, commas or newlines round-trip through any CSV parser.
func WriteCSV(w io.Writer, jobs []storage.StructuredJob) error {
	rows := make([]string, 0, len(jobs)+1)
	rows = append(rows, strings.Join(headers, ","))

	for _, job := range jobs {
		values := []string{
			job.ID,
			escapeCSV(job.Title),
			escapeCSV(job.Company),
			escapeCSV(job.Location),
			escapeCSV(job.JobType),
			escapeCSV(job.Category),
			escapeCSV(strings.Join(job.Skills, "; ")),
			escapeCSV(job.ClosingDate),
			escapeCSV(job.ContactEmail),
			escapeCSV(job.ContactPhone),
			job.UploadDate.Format(time.RFC3339),
			escapeCSV(job.FileName),
			job.Status,
			escapeCSV(job.Description),
		}
		rows = append(rows, strings.Join(values, ","))
	}

	_, err := io.WriteString(w, strings.Join(rows, "\n"))
	return err
}

// Filename returns the dated default name for a library export.
func Filename(now time.Time) string {
	return fmt.Sprintf("job_library_%s.csv", now.Format("2006-01-02"))
}

func escapeCSV(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
