package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"job-ingest/internal/export"
	"job-ingest/internal/storage"
)

// ListJobsHandler returns stored jobs, newest upload first
// @Summary List or search the job library
// @Tags jobs
// @Produce json
// @Param q query string false "Case-insensitive search over title, company, file name, skills and description"
// @Success 200 {array} storage.StructuredJob
// @Failure 500 {object} map[string]string
// @Router /jobs [get]
func (a *API) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	criteria := &storage.SearchCriteria{Term: r.URL.Query().Get("q")}

	jobs, err := a.db.SearchJobs(r.Context(), criteria)
	if err != nil {
		log.Printf("[Jobs] List failed: %v", err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []storage.StructuredJob{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// DeleteJobsHandler removes jobs by id set
// @Summary Delete jobs
// @Description Deletes the given job ids. Idempotent: ids already deleted by another session match nothing and do not error.
// @Tags admin
// @Accept json
// @Produce json
// @Param ids body object true "Object with an 'ids' array of job ids"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/jobs [delete]
func (a *API) DeleteJobsHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(input.IDs) == 0 {
		http.Error(w, "no ids given", http.StatusBadRequest)
		return
	}

	deleted, err := a.db.DeleteJobs(r.Context(), input.IDs)
	if err != nil {
		log.Printf("[Jobs] Delete failed: %v", err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"deleted": deleted,
	})
}

// ExportJobsHandler streams the whole library as CSV
// @Summary Export the job library as CSV
// @Tags admin
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 500 {object} map[string]string
// @Router /admin/jobs/export [get]
func (a *API) ExportJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.db.ListJobs(r.Context())
	if err != nil {
		log.Printf("[Jobs] Export query failed: %v", err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	if err := export.WriteCSV(w, jobs); err != nil {
		log.Printf("[Jobs] Export write failed: %v", err)
	}
}

// StatsHandler returns dashboard counters
// @Summary Library statistics
// @Tags admin
// @Produce json
// @Success 200 {object} storage.LibraryStats
// @Failure 500 {object} map[string]string
// @Router /admin/stats [get]
func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.db.GetStats(r.Context())
	if err != nil {
		log.Printf("[Jobs] Stats query failed: %v", err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
