// Package server exposes the extraction pipeline over HTTP. A single
// multipart upload endpoint accepts one document and replies with the
// normalized record; every pipeline failure maps to a classified status.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/common"
	"github.com/certvault/cert-extractor/internal/decode"
	"github.com/certvault/cert-extractor/internal/pipeline"
)

// Version reported by the info endpoint.
const Version = "1.0.0"

// Processor runs one document through the extraction flow.
type Processor interface {
	Process(ctx context.Context, doc decode.Document) (pipeline.Result, error)
}

// Server handles the HTTP boundary. It owns no pipeline state beyond the
// Processor it delegates to.
type Server struct {
	proc     Processor
	engine   string
	provider string
	logger   *slog.Logger
}

func New(proc Processor, engineName, providerName string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{proc: proc, engine: engineName, provider: providerName, logger: logger}
}

// Routes builds the handler mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleInfo)
	return mux
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":        "cert-extractor",
		"version":        Version,
		"ocr_engine":     s.engine,
		"llm_provider":   s.provider,
		"accepted_types": constants.AllowedExtensionList(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "ok",
		"ocr_engine":   s.engine,
		"llm_provider": s.provider,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Cap the whole request body; the multipart envelope rides inside the
	// same limit, so a file at exactly the cap still fits in practice only
	// when the form overhead is accounted for. The extra slack covers it.
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes+64<<10)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, http.StatusBadRequest, "UPLOAD_TOO_LARGE",
				fmt.Sprintf("file exceeds the %d MiB upload limit", constants.MaxUploadBytes>>20))
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "multipart form must carry a 'file' field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "uploaded file must carry a filename")
		return
	}

	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		err := common.UnsupportedFormatError("." + ext)
		s.writeError(w, r, common.HTTPStatus(err), string(common.KindOf(err)), err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes+1))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "could not read uploaded file")
		return
	}
	if int64(len(data)) > constants.MaxUploadBytes {
		s.writeError(w, r, http.StatusBadRequest, "UPLOAD_TOO_LARGE",
			fmt.Sprintf("file exceeds the %d MiB upload limit", constants.MaxUploadBytes>>20))
		return
	}
	if len(data) == 0 {
		s.writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "uploaded file is empty")
		return
	}

	res, err := s.proc.Process(r.Context(), decode.Document{Filename: filename, Data: data})
	if err != nil {
		s.writeError(w, r, common.HTTPStatus(err), string(common.KindOf(err)), err.Error())
		return
	}

	s.logger.Info("http.extract.ok",
		"filename", filename,
		"bytes", len(data),
		"text_len", res.TextLength,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, kind, detail string) {
	s.logger.Warn("http.extract.error",
		"status", status,
		"kind", kind,
		"detail", detail,
		"remote", r.RemoteAddr,
	)
	writeJSON(w, status, map[string]any{
		"status": "error",
		"error": map[string]string{
			"kind":   kind,
			"detail": detail,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}

// ListenAndServe runs the server until ctx is canceled, then drains with the
// given timeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http.shutdown", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
