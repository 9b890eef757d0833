package api

import (
	"crypto/subtle"
	"log"
	"net/http"

	"job-ingest/internal/config"
	"job-ingest/internal/ingest"
	"job-ingest/internal/llm"
	"job-ingest/internal/storage"
)

type API struct {
	db           *storage.DB
	queue        *ingest.Queue
	orchestrator *ingest.Orchestrator
	adminToken   string
}

func NewAPI(cfg *config.Config, db *storage.DB) *API {
	queue := ingest.NewQueue()
	queue.OnChange(func(f ingest.PendingFile) {
		log.Printf("[Queue] %s: %s (%s)", f.Name, f.Status, f.Message)
	})

	llmSvc := llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	orchestrator := ingest.NewOrchestrator(queue, llmSvc, db, cfg.LLMTimeout)

	return &API{
		db:           db,
		queue:        queue,
		orchestrator: orchestrator,
		adminToken:   cfg.AdminToken,
	}
}

// requireAdmin gates the admin panel behind a static shared secret.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.adminToken == "" {
			http.Error(w, "admin access is not configured", http.StatusServiceUnavailable)
			return
		}
		token := r.Header.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(a.adminToken)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
