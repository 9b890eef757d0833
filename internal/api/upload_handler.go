package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"job-ingest/internal/ingest"
)

// UploadFilesHandler accepts a batch of job-posting files into the queue
// @Summary Queue job posting files
// @Description Upload one or more job posting files (PDF, DOCX, TXT, CSV or image). Files whose name is already queued are silently skipped.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Job posting files"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /admin/uploads [post]
func (a *API) UploadFilesHandler(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 32MB in memory)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form or files too large", http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	incoming := make([]ingest.IncomingFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			http.Error(w, "failed to read uploaded file: "+header.Filename, http.StatusBadRequest)
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			http.Error(w, "failed to read uploaded file: "+header.Filename, http.StatusBadRequest)
			return
		}

		mime := header.Header.Get("Content-Type")
		if mime == "" {
			mime = "application/octet-stream"
		}
		incoming = append(incoming, ingest.IncomingFile{
			Name: header.Filename,
			Mime: mime,
			Size: header.Size,
			// Multipart uploads carry no modification time; intake time
			// stands in for the id derivation.
			LastModified: time.Now(),
			Content:      content,
		})
	}

	added := a.queue.Add(incoming)
	log.Printf("[Upload] Queued %d of %d file(s)", added, len(incoming))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"added":   added,
		"skipped": len(incoming) - added,
		"files":   a.queue.Snapshot(),
	})
}

// ListUploadsHandler returns the current upload queue
// @Summary List the upload queue
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/uploads [get]
func (a *API) ListUploadsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"files":        a.queue.Snapshot(),
		"pendingCount": a.queue.PendingCount(),
	})
}

// RemoveUploadHandler removes a single pending or failed file from the queue
// @Summary Remove a queued file
// @Tags admin
// @Produce json
// @Param id path string true "Queued file id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/uploads/{id} [delete]
func (a *API) RemoveUploadHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := a.queue.Remove(id)
	if errors.Is(err, ingest.ErrFileNotFound) {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, ingest.ErrFileNotIdle) {
		http.Error(w, "file is processing or already succeeded", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"files": a.queue.Snapshot(),
	})
}

// ClearProcessedHandler drops all finished (success or error) entries
// @Summary Clear processed files
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/uploads/clear-processed [post]
func (a *API) ClearProcessedHandler(w http.ResponseWriter, r *http.Request) {
	a.queue.ClearProcessed()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"files": a.queue.Snapshot(),
	})
}

// ProcessHandler runs the ingestion pipeline over all pending files
// @Summary Process pending files
// @Description Runs extraction, AI structuring and persistence sequentially over every pending file. Long-running; the server's write timeout accommodates the LLM calls.
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Router /admin/process [post]
func (a *API) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	anySucceeded, err := a.orchestrator.ProcessPending(r.Context())
	if errors.Is(err, ingest.ErrAlreadyActive) {
		http.Error(w, "a batch run is already in progress", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"anySucceeded": anySucceeded,
		"files":        a.queue.Snapshot(),
	})
}
