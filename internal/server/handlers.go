package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lucasvnasc/paginas-semelhantes/internal/metrics"
	"github.com/lucasvnasc/paginas-semelhantes/internal/report"
	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

// maxUploadSize bounds the CSV upload. Looker Studio exports of large sites
// stay well under this.
const maxUploadSize = 100 << 20 // 100MB

type handler struct {
	jobs    *service.JobManager
	metrics *metrics.Collector
	logger  *slog.Logger
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// createAnalysis accepts a multipart upload ("file" field) with optional
// "threshold" and "min_keywords" fields and starts an analysis job.
func (h *handler) createAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	opts := service.Options{
		Threshold:   0.8,
		MinKeywords: 10,
	}
	if v := r.FormValue("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		opts.Threshold = t
	}
	if v := r.FormValue("min_keywords"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_keywords must be an integer")
			return
		}
		opts.MinKeywords = n
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}

	job := h.jobs.Submit(data, opts)
	h.logger.Info("analysis submitted", "job", job.ID, "threshold", opts.Threshold, "bytes", len(data))

	writeJSON(w, http.StatusAccepted, job)
}

func (h *handler) listAnalyses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.jobs.List())
}

func (h *handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobs.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// downloadCSV serves the results of a completed job in the original
// export layout.
func (h *handler) downloadCSV(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobs.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != service.JobStatusCompleted || job.Result == nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s, results not available", job.Status))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "resultados_seo.csv"))
	if err := report.WriteCSV(w, job.Result.Groups); err != nil {
		h.logger.Error("write results csv", "job", job.ID, "error", err)
	}
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		writeJSON(w, http.StatusOK, metrics.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
