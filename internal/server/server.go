// Package server implements the pageconv HTTP conversion service.
//
// The service exposes the same conversion the CLI performs, for deployments
// where eScriptorium exports are converted on the fly:
//
//	POST /convert  - request body: one PAGE XML document; response body:
//	                 the converted document. 400 with the parser diagnostic
//	                 on malformed input.
//	GET  /healthz  - liveness probe.
//
// Every request is tagged with a UUID, echoed in the X-Request-ID response
// header and attached to all log records for the request.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/htrtools/pageconv/pkg/errors"
	"github.com/htrtools/pageconv/pkg/pipeline"
)

// maxBodyBytes bounds the request body. PAGE XML exports for a single page
// are well under a megabyte; 32 MiB leaves generous headroom.
const maxBodyBytes = 32 << 20

// Server handles conversion requests.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	opts    pipeline.Options
	handler http.Handler
}

// New creates a server converting with the given runner and options.
// If logger is nil, a default logger is used.
func New(runner *pipeline.Runner, logger *log.Logger, opts pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		logger: logger,
		opts:   opts,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/convert", s.handleConvert)
	s.handler = r
	return s
}

// Handler returns the HTTP handler for mounting or serving.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until the listener fails or ctx is cancelled, in
// which case in-flight requests get a short grace period to finish.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.logger.Info("listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const requestLogKey ctxKey = iota

// requestLog carries a request's UUID together with a logger already
// tagged with it, so handlers log correlated records without re-deriving
// the ID.
type requestLog struct {
	id     string
	logger *log.Logger
}

// requestID tags each request with a UUID, echoes it in the X-Request-ID
// response header, and attaches an ID-tagged logger to the request context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestLogKey, requestLog{
			id:     id,
			logger: s.logger.With("request_id", id),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// request returns the request ID and tagged logger from ctx, falling back
// to the server logger for handlers mounted outside the middleware chain.
func (s *Server) request(ctx context.Context) (string, *log.Logger) {
	if rl, ok := ctx.Value(requestLogKey).(requestLog); ok {
		return rl.id, rl.logger
	}
	return "", s.logger
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	reqID, logger := s.request(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("read body failed", "err", err)
		http.Error(w, "request body unreadable or too large", http.StatusRequestEntityTooLarge)
		return
	}

	result, err := s.runner.Convert(r.Context(), reqID, body, s.opts)
	if err != nil {
		if errors.Is(err, errors.ErrCodeParse) {
			logger.Warn("rejected malformed document", "err", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("conversion failed", "err", err)
		http.Error(w, errors.UserMessage(err), http.StatusInternalServerError)
		return
	}

	cacheStatus := "MISS"
	if result.CacheHit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Output)

	logger.Info("converted",
		"in_bytes", result.Stats.InputBytes,
		"out_bytes", result.Stats.OutputBytes,
		"cache", cacheStatus,
		"duration", result.Stats.Duration)
}
