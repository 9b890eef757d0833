package api

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	r := mux.NewRouter()

	// Swagger documentation
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Public job-board read path
	r.HandleFunc("/api/jobs", a.ListJobsHandler).Methods(http.MethodGet)

	// Admin panel: upload queue, processing, library management
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(a.requireAdmin)
	admin.HandleFunc("/uploads", a.UploadFilesHandler).Methods(http.MethodPost)
	admin.HandleFunc("/uploads", a.ListUploadsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/uploads/clear-processed", a.ClearProcessedHandler).Methods(http.MethodPost)
	admin.HandleFunc("/uploads/{id}", a.RemoveUploadHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/process", a.ProcessHandler).Methods(http.MethodPost)
	admin.HandleFunc("/stats", a.StatsHandler).Methods(http.MethodGet)
	admin.HandleFunc("/jobs", a.DeleteJobsHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/jobs/export", a.ExportJobsHandler).Methods(http.MethodGet)

	return r
}
