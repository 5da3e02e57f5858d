// Handler for miscellaneous endpoints such as health check

package handler

import (
	"net/http"
	"time"

	"github.com/yumyai/metadraft/pkg/db"
)

type HealthResponse struct {
	Health    string    `json:"health"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Reference *db.Stats `json:"reference,omitempty"`
	Jobs      int       `json:"jobs"`
	Error     string    `json:"error,omitempty"`
}

func (s *Service) HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:    "ok",
		Version:   s.Version,
		Timestamp: time.Now(),
		Jobs:      s.Jobs.Len(),
	}

	stats, err := s.Pipeline.DB.Stats(r.Context())
	if err != nil {
		response.Health = "degraded"
		response.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	response.Reference = &stats

	writeJSON(w, http.StatusOK, response)
}
