package request

import (
	"errors"
	"strings"
)

// Body of POST /api/v1/reconstruct. Unset thresholds fall back to the server
// defaults.
type ReconstructRequest struct {
	OrganismID   string   `json:"organism_id"`
	Description  string   `json:"description"`
	Fasta        string   `json:"fasta"`
	Engine       string   `json:"engine"`
	MinBitscore  *float64 `json:"min_bitscore"`
	MinPositives *float64 `json:"min_positives"`
	TieBreak     string   `json:"tie_break"`
}

func (r ReconstructRequest) Validate() error {
	if strings.TrimSpace(r.OrganismID) == "" {
		return errors.New("organism_id cannot be empty")
	}
	if strings.TrimSpace(r.Fasta) == "" {
		return errors.New("fasta cannot be empty")
	}
	if r.MinBitscore != nil && *r.MinBitscore < 0 {
		return errors.New("min_bitscore must not be negative")
	}
	if r.MinPositives != nil && (*r.MinPositives < 0 || *r.MinPositives > 100) {
		return errors.New("min_positives must be within 0-100")
	}
	return nil
}

// Reply to a submitted reconstruction.
type SubmitResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
	ModelURL  string `json:"model_url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
