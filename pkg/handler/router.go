package handler

import (
	"net/http"

	"github.com/yumyai/metadraft/pkg/middle"
	"go.uber.org/zap"
)

func NewRouter(s *Service, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// API routes
	mux.HandleFunc("GET /api/v1/health", s.HealthCheck)
	mux.HandleFunc("POST /api/v1/reconstruct", s.Reconstruct)
	mux.HandleFunc("GET /api/v1/jobs/{job_id}", s.JobStatus)
	mux.HandleFunc("GET /api/v1/jobs/{job_id}/model", s.JobModel)

	return middle.Chain(mux, middle.RequestIDMiddleware(log), middle.LoggingMiddleware(log))
}
