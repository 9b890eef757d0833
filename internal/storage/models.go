package storage

import "time"

// Job statuses as persisted in the structured_jobs table.
const (
	StatusProcessed = "Processed"
	StatusError     = "Error"
)

// StructuredJob is one persisted job posting produced by the ingestion
// pipeline. Description always holds the full raw text the structuring
// call was given, never a summary.
type StructuredJob struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	UploadDate time.Time `json:"uploadDate"`
	Status     string    `json:"status"`

	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	JobType     string   `json:"jobType"`  // Full-time, Part-time, Contract, Internship
	Category    string   `json:"category"` // e.g. Information Technology, Marketing
	Skills      []string `json:"skills"`
	Description string   `json:"description"`

	ClosingDate  string `json:"closingDate,omitempty"` // YYYY-MM-DD, empty when not found
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`

	// MatchScore is computed per CV-match session and never persisted.
	MatchScore *float64 `json:"matchScore,omitempty"`
}

// SearchCriteria used to filter the job library.
type SearchCriteria struct {
	Term string `json:"term"`
}

// LibraryStats summarizes the library for the admin dashboard.
type LibraryStats struct {
	TotalJobs     int `json:"totalJobs"`
	ProcessedJobs int `json:"processedJobs"`
}
