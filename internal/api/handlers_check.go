package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/bracecheck/internal/block"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/pipeline"
	"github.com/dgallion1/bracecheck/internal/report"
)

var contentTypes = map[report.Format]string{
	report.FormatJSON: "application/json",
	report.FormatYAML: "application/yaml",
	report.FormatText: "text/plain; charset=utf-8",
}

// handleCheck checks one document synchronously. The document is either the
// multipart field "file" or the raw request body named by ?filename=.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	out := report.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := report.ParseFormat(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		out = f
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	filename, data, err := s.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, errTooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	format, err := requestFormat(r, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := cacheKey(data, format, filename)
	doc, hit := s.cachedDocument(key)
	if !hit {
		src := block.SourceDocument{Name: filename, Text: string(data)}
		doc, err = s.checker.CheckDocument(r.Context(), src, format, nil)
		if err != nil {
			s.log.Error("check failed", "filename", filename, "error", err)
			jsonError(w, "check failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if s.cache != nil {
			s.cache.Add(key, doc)
		}
	}

	w.Header().Set("Content-Type", contentTypes[out])
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if err := report.Render(w, out, []report.Document{doc}); err != nil {
		s.log.Error("render failed", "filename", filename, "error", err)
	}
}

var errTooLarge = errors.New("file too large")

func (s *Server) readUpload(r *http.Request) (string, []byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return "", nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("file is required: %w", err)
		}
		defer file.Close()

		data, err := s.readLimited(file)
		return sanitizeFilename(header.Filename), data, err
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" && r.URL.Query().Get("as") == "" {
		return "", nil, errors.New("filename or as query parameter is required")
	}
	data, err := s.readLimited(r.Body)
	return sanitizeFilename(filename), data, err
}

func (s *Server) readLimited(rd io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, errTooLarge
	}
	return data, nil
}

// requestFormat honours ?as= before falling back to the file extension.
func requestFormat(r *http.Request, filename string) (parser.Format, error) {
	if as := r.URL.Query().Get("as"); as != "" {
		return parser.ParseFormat(as)
	}
	if !parser.IsSupportedExtension(filename) {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	return parser.FormatFor(filename)
}

func cacheKey(data []byte, format parser.Format, filename string) string {
	return pipeline.ContentHashHex(data) + ":" + string(format) + ":" + filename
}

func (s *Server) cachedDocument(key string) (report.Document, bool) {
	if s.cache == nil {
		return report.Document{}, false
	}
	return s.cache.Get(key)
}

func (s *Server) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleBatchCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		format, err := parser.FormatFor(filename)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := s.readLimited(f)
		f.Close()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(filename, format, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/check/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
