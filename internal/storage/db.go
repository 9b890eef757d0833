package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq" // also registers the postgres driver
)

// Sentinel errors for the persistence failure modes. Callers match with
// errors.Is; the wrapped message carries the driver detail.
var (
	ErrWrite  = errors.New("job store write failed")
	ErrDelete = errors.New("job store delete failed")
)

type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

// InsertJobs persists the given records in a single transaction. The batch is
// all-or-nothing: if any row fails, nothing from the slice is kept.
func (db *DB) InsertJobs(ctx context.Context, jobs []StructuredJob) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := db.connection.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer tx.Rollback()

	query := `INSERT INTO structured_jobs
	          (id, file_name, file_type, upload_date, status, title, company, location,
	           job_type, category, skills, description, closing_date, contact_email, contact_phone)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	for _, job := range jobs {
		_, err := tx.ExecContext(ctx, query,
			job.ID,
			job.FileName,
			job.FileType,
			job.UploadDate,
			job.Status,
			job.Title,
			job.Company,
			job.Location,
			job.JobType,
			job.Category,
			pq.Array(job.Skills),
			job.Description,
			job.ClosingDate,
			job.ContactEmail,
			job.ContactPhone,
		)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// ListJobs returns every stored job, newest upload first.
func (db *DB) ListJobs(ctx context.Context) ([]StructuredJob, error) {
	query := selectColumns + ` FROM structured_jobs ORDER BY upload_date DESC`
	rows, err := db.connection.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

// SearchJobs filters the library with a case-insensitive term across the
// fields the job board searches on.
func (db *DB) SearchJobs(ctx context.Context, criteria *SearchCriteria) ([]StructuredJob, error) {
	if criteria == nil || criteria.Term == "" {
		return db.ListJobs(ctx)
	}

	query := selectColumns + `
	          FROM structured_jobs
	          WHERE title ILIKE $1
	             OR company ILIKE $1
	             OR file_name ILIKE $1
	             OR description ILIKE $1
	             OR array_to_string(skills, ',') ILIKE $1
	          ORDER BY upload_date DESC`
	rows, err := db.connection.QueryContext(ctx, query, "%"+criteria.Term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

// DeleteJobs removes the rows whose ids are in the given set. Idempotent by
// id: ids that were already deleted by another session simply match nothing.
func (db *DB) DeleteJobs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := db.connection.ExecContext(ctx,
		`DELETE FROM structured_jobs WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDelete, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil // delete succeeded, count unavailable
	}
	return affected, nil
}

// GetStats returns the dashboard counters.
func (db *DB) GetStats(ctx context.Context) (*LibraryStats, error) {
	stats := &LibraryStats{}
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $1) FROM structured_jobs`
	err := db.connection.QueryRowContext(ctx, query, StatusProcessed).
		Scan(&stats.TotalJobs, &stats.ProcessedJobs)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

const selectColumns = `SELECT id, file_name, file_type, upload_date, status, title, company, location,
	           job_type, category, skills, description, closing_date, contact_email, contact_phone`

func scanJobs(rows *sql.Rows) ([]StructuredJob, error) {
	var jobs []StructuredJob
	for rows.Next() {
		var job StructuredJob
		var skills pq.StringArray
		err := rows.Scan(
			&job.ID,
			&job.FileName,
			&job.FileType,
			&job.UploadDate,
			&job.Status,
			&job.Title,
			&job.Company,
			&job.Location,
			&job.JobType,
			&job.Category,
			&skills,
			&job.Description,
			&job.ClosingDate,
			&job.ContactEmail,
			&job.ContactPhone,
		)
		if err != nil {
			return nil, err
		}
		job.Skills = []string(skills)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
