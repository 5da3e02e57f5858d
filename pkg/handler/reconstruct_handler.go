package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yumyai/metadraft/internal/util"
	"github.com/yumyai/metadraft/logger"
	"github.com/yumyai/metadraft/pkg/handler/request"
	"github.com/yumyai/metadraft/pkg/middle"
	"github.com/yumyai/metadraft/pkg/model"
	"github.com/yumyai/metadraft/pkg/pipeline"
	"github.com/yumyai/metadraft/pkg/render"
	"github.com/yumyai/metadraft/pkg/search"
	"go.uber.org/zap"
)

// MaxRequestBody caps the size of a submitted proteome.
const MaxRequestBody = 64 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, request.ErrorResponse{Error: msg})
}

// Reconstruct accepts a proteome and queues a reconstruction job.
func (s *Service) Reconstruct(w http.ResponseWriter, r *http.Request) {
	log := middle.Logger(r.Context(), logger.L())

	var req request.ReconstructRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody)).Decode(&req); err != nil {
		log.Info("Invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.jobFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prots, err := search.ParseProteins(strings.NewReader(req.Fasta))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := s.Jobs.NewJob(job.OrganismID)
	job.QueryFasta = filepath.Join(s.UploadDir, util.SafeName(job.OrganismID)+"-"+entry.ID+".faa")

	var buf bytes.Buffer
	err = search.WriteProteins(&buf, prots)
	if err == nil {
		err = os.WriteFile(job.QueryFasta, buf.Bytes(), 0o644)
	}
	if err != nil {
		log.Error("Failed to store query FASTA", zap.Error(err))
		s.Jobs.FailJob(entry.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to store query FASTA")
		return
	}

	log.Info("Reconstruction queued",
		zap.String("job_id", entry.ID),
		zap.String("organism", job.OrganismID),
		zap.Int("proteins", len(prots)))

	s.wg.Add(1)
	go s.runJob(entry.ID, job)

	writeJSON(w, http.StatusAccepted, request.SubmitResponse{
		JobID:     entry.ID,
		Status:    string(JobQueued),
		StatusURL: "/api/v1/jobs/" + entry.ID,
		ModelURL:  "/api/v1/jobs/" + entry.ID + "/model",
	})
}

func (s *Service) jobFromRequest(req request.ReconstructRequest) (pipeline.Job, error) {
	job := pipeline.Job{
		OrganismID:  strings.TrimSpace(req.OrganismID),
		Description: s.Defaults.Description,
		Engine:      s.Defaults.Engine,
		Thresholds:  s.Defaults.Thresholds,
		Timeout:     s.Defaults.Timeout,
	}
	if req.Description != "" {
		job.Description = req.Description
	}
	if req.Engine != "" {
		e, err := search.ParseEngine(req.Engine)
		if err != nil {
			return job, err
		}
		job.Engine = e
	}
	if req.TieBreak != "" {
		tb, err := model.ParseTieBreak(req.TieBreak)
		if err != nil {
			return job, err
		}
		job.Thresholds.TieBreak = tb
	}
	if req.MinBitscore != nil {
		job.Thresholds.MinBitscore = *req.MinBitscore
	}
	if req.MinPositives != nil {
		job.Thresholds.MinPositives = *req.MinPositives
	}
	return job, nil
}

func (s *Service) runJob(jobID string, job pipeline.Job) {
	defer s.wg.Done()
	defer os.Remove(job.QueryFasta)
	log := logger.With(zap.String("job_id", jobID))

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		s.Jobs.FailJob(jobID, fmt.Errorf("server shutting down: %w", err))
		return
	}
	defer s.sem.Release(1)

	s.Jobs.SetRunning(jobID)
	res, err := s.Pipeline.Run(s.ctx, job)
	if err != nil {
		log.Error("Reconstruction failed", zap.Error(err))
		s.Jobs.FailJob(jobID, err)
		return
	}
	s.Jobs.CompleteJob(jobID, res.Model, res.Report)
}

// JobStatus reports the state of a job.
func (s *Service) JobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.Jobs.GetJob(r.PathValue("job_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// JobModel streams the finished model in the requested format.
func (s *Service) JobModel(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	om, status, ok := s.Jobs.Model(r.PathValue("job_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	switch status {
	case JobCompleted:
	case JobFailed:
		writeError(w, http.StatusConflict, "job failed")
		return
	default:
		writeError(w, http.StatusConflict, "job is "+string(status))
		return
	}

	// render to a buffer so an encoding error can still become a 500
	var buf bytes.Buffer
	if err := render.Write(&buf, om, format); err != nil {
		middle.Logger(r.Context(), logger.L()).Error("Failed to render model", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render model")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(buf.Bytes())
}
