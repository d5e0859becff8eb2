package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/findoc-analyzer/internal/store"
)

// QueuedResponse is returned by POST /analyze.
type QueuedResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// SyncResponse is returned by the synchronous analysis endpoints.
type SyncResponse struct {
	Status        string `json:"status"`
	Query         string `json:"query"`
	Analysis      string `json:"analysis"`
	FileProcessed string `json:"file_processed,omitempty"`
	Source        string `json:"source,omitempty"`
}

// HistoryEntry is one row of GET /history.
type HistoryEntry struct {
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	Query      string    `json:"query"`
	Filename   string    `json:"filename"`
	OutputFile *string   `json:"output_file"`
	CreatedAt  time.Time `json:"created_at"`
}

// handleRoot is the health check.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.errorResponse(w, http.StatusNotFound, "Not found.")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Financial Document Analyzer API is running"})
}

// handleAnalyze accepts a PDF upload, records a pending job, and queues it.
// The caller polls GET /result/{job_id}.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	file, header, query, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	jobID := uuid.NewString()
	filePath, err := s.saveUpload(file, jobID+".pdf")
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	job := &store.Job{
		ID:       jobID,
		Query:    query,
		Filename: header.Filename,
		FilePath: filePath,
	}
	if err := s.jobs.CreateJob(r.Context(), job); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.pool.Enqueue(jobID); err != nil {
		if setErr := s.jobs.SetFailed(r.Context(), jobID, err.Error()); setErr != nil {
			s.logger.Error("failed to record enqueue failure", "job_id", jobID, "error", setErr)
		}
		s.errorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, QueuedResponse{
		Status:  "queued",
		JobID:   jobID,
		Message: "Document queued for analysis. Poll GET /result/{job_id} for updates. Result is also saved to outputs/.",
	})
}

// handleAnalyzeSync runs the pipeline inside the request and returns the
// analysis directly. No job record is created; the uploaded file is removed
// when the run finishes either way.
func (s *Server) handleAnalyzeSync(w http.ResponseWriter, r *http.Request) {
	file, header, query, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	filePath, err := s.saveUpload(file, "sync_"+uuid.NewString()+".pdf")
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove sync upload", "path", filePath, "error", err)
		}
	}()

	res, err := s.runner.Run(r.Context(), query, filePath)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, SyncResponse{
		Status:        "success",
		Query:         query,
		Analysis:      res.Final,
		FileProcessed: header.Filename,
	})
}

// handleAnalyzeData analyzes the first PDF already present in the data
// directory. Synchronous; no queue.
func (s *Server) handleAnalyzeData(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	filePath, err := s.firstPDF()
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	res, err := s.runner.Run(r.Context(), query, filePath)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, SyncResponse{
		Status:   "success",
		Query:    query,
		Analysis: res.Final,
		Source:   "data_folder",
	})
}

// handleGetResult returns the full job record.
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.GetJob(r.Context(), r.PathValue("job_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found.")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteResult removes the job record. The output artifact is kept.
func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if err := s.jobs.DeleteJob(r.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found.")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Job %s deleted.", jobID)})
}

// handleHistory lists all jobs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.ListJobs(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	history := make([]HistoryEntry, 0, len(jobs))
	for _, j := range jobs {
		history = append(history, HistoryEntry{
			JobID:      j.ID,
			Status:     j.Status,
			Query:      j.Query,
			Filename:   j.Filename,
			OutputFile: j.OutputFile,
			CreatedAt:  j.CreatedAt,
		})
	}
	s.jsonResponse(w, http.StatusOK, history)
}

// parseUpload extracts and validates the multipart file and query fields.
// It writes the error response itself when validation fails.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, string, bool) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return nil, nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "file is required")
		return nil, nil, "", false
	}

	if header.Filename == "" || !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		file.Close()
		s.errorResponse(w, http.StatusBadRequest, "Only PDF files are supported.")
		return nil, nil, "", false
	}

	query := strings.TrimSpace(r.FormValue("query"))
	return file, header, query, true
}

// saveUpload writes the uploaded content into the data directory and
// returns the absolute path so workers with a different cwd can find it.
func (s *Server) saveUpload(src io.Reader, name string) (string, error) {
	path := filepath.Join(s.dataDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// firstPDF returns the first PDF (by name) in the data directory.
func (s *Server) firstPDF() (string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return "", fmt.Errorf("read data dir: %w", err)
	}

	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			pdfs = append(pdfs, e.Name())
		}
	}
	if len(pdfs) == 0 {
		return "", fmt.Errorf("no PDF files found in %s", s.dataDir)
	}
	sort.Strings(pdfs)
	return filepath.Join(s.dataDir, pdfs[0]), nil
}
