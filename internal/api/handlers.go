package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/dgallion1/pdfquery/internal/document"
	"github.com/dgallion1/pdfquery/internal/engine"
)

// handleQuery accepts one or more PDF uploads plus a question and
// returns the normalized model answer.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*4+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	question := r.FormValue("question")
	if question == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one PDF file is required", http.StatusBadRequest)
		return
	}

	// Stage uploads to temp files; the loader and renderer read from disk.
	var paths []string
	defer func() {
		for _, p := range paths {
			os.Remove(p)
		}
	}()

	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		path, err := s.stageUpload(fh, filename)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		paths = append(paths, path)
	}

	result, err := s.engine.QueryMultiple(r.Context(), paths, question)
	if err != nil {
		status, msg := classifyError(err)
		s.log.Error("query failed", "error", err)
		jsonError(w, msg, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"answer":        result.Answer,
		"answer_html":   renderMarkdown(result.Answer),
		"model":         result.Model,
		"usage":         result.Usage,
		"finish_reason": result.FinishReason,
		"truncated":     result.IsTruncated(),
	})
}

// stageUpload copies one multipart file to a temp file and returns its path.
func (s *Server) stageUpload(fh *multipart.FileHeader, filename string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s", filename)
	}
	defer f.Close()

	// Keep the original name visible in citation labels via the suffix.
	tmp, err := os.CreateTemp("", "pdfquery-*-"+filename)
	if err != nil {
		return "", fmt.Errorf("failed to stage upload %s", filename)
	}
	path := tmp.Name()

	n, err := io.Copy(tmp, io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	tmp.Close()
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to read upload %s", filename)
	}
	if n > s.cfg.MaxUploadBytes {
		os.Remove(path)
		return "", fmt.Errorf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes)
	}
	return path, nil
}

// classifyError maps the error taxonomy onto HTTP statuses so a broken
// PDF is distinguishable from a provider outage.
func classifyError(err error) (int, string) {
	var srcErr *document.SourceError
	var renderErr *document.RenderError
	var provErr *engine.ProviderError
	switch {
	case errors.As(err, &srcErr):
		return http.StatusUnprocessableEntity, srcErr.Error()
	case errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity, renderErr.Error()
	case errors.As(err, &provErr):
		return http.StatusBadGateway, provErr.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// renderMarkdown converts the model's markdown answer to HTML. On
// conversion failure the raw answer is all the caller gets.
func renderMarkdown(answer string) string {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(answer), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed.pdf"
	}
	return name
}
