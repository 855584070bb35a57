// Package server exposes the validation workflow over HTTP for
// sequencing tools that call back into the pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/catchall"
	"github.com/sells-group/outreach-cli/internal/store"
)

// jobTimeout bounds a single webhook-triggered validation run. Ten
// candidates with one-second gaps plus API latency fits well inside it.
const jobTimeout = 2 * time.Minute

// Processor runs the validation workflow for one contact.
type Processor interface {
	ProcessContact(ctx context.Context, contactID int64, dryRun bool) (*catchall.Outcome, error)
}

// Server handles health, stats, and webhook validation requests.
type Server struct {
	store     store.Store
	processor Processor
	log       *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger overrides the global logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a Server around a store and a validation processor.
func New(st store.Store, p Processor, opts ...Option) *Server {
	s := &Server{store: st, processor: p, log: zap.L()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/webhook/validate", s.handleWebhookValidate)
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

type validateRequest struct {
	ContactID int64 `json:"contact_id"`
	DryRun    bool  `json:"dry_run,omitempty"`
}

// handleWebhookValidate accepts the job and runs it in the background.
// The candidate loop takes seconds per contact; webhook callers get a
// job id back immediately instead of holding the connection open.
func (s *Server) handleWebhookValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.ContactID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "contact_id is required"})
		return
	}

	jobID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		out, err := s.processor.ProcessContact(ctx, req.ContactID, req.DryRun)
		if err != nil {
			s.log.Error("webhook validation failed",
				zap.String("job_id", jobID),
				zap.Int64("contact_id", req.ContactID),
				zap.Error(err))
			return
		}
		s.log.Info("webhook validation finished",
			zap.String("job_id", jobID),
			zap.Int64("contact_id", req.ContactID),
			zap.String("action", string(out.Action)),
			zap.String("email", out.Email))
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     jobID,
		"contact_id": req.ContactID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
