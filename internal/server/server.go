// Package server exposes the review engine over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/chris-regnier/quill/internal/analyzer"
	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/metrics"
	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/store"
)

// maxBodyBytes bounds the size of a review request.
const maxBodyBytes = 1 << 20

// Config holds the collaborators of a Server. Only Analyzer is required.
type Config struct {
	Analyzer  *analyzer.Analyzer
	Collector *metrics.Collector
	Store     store.Store
	Logger    *slog.Logger
	Version   string
}

// Server serves the HTTP API.
type Server struct {
	analyzer  *analyzer.Analyzer
	collector *metrics.Collector
	store     store.Store
	logger    *slog.Logger
	version   string
}

// New creates a Server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := cfg.Analyzer
	if a == nil {
		a = analyzer.New()
	}
	return &Server{
		analyzer:  a,
		collector: cfg.Collector,
		store:     cfg.Store,
		logger:    logger,
		version:   cfg.Version,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/languages", s.languages)
		r.Get("/rules", s.rules)
		r.Post("/review", s.review)
		r.Get("/stats", s.stats)
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", s.listReviews)
			r.Get("/{id}", s.getReview)
		})
	})
	return r
}

// Serve listens on addr and blocks until ctx is cancelled, then shuts the
// server down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("starting API server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

type languageInfo struct {
	ID        lang.Language `json:"id"`
	Label     string        `json:"label"`
	Extension string        `json:"extension"`
}

func (s *Server) languages(w http.ResponseWriter, r *http.Request) {
	all := lang.All()
	out := make([]languageInfo, 0, len(all))
	for _, l := range all {
		out = append(out, languageInfo{ID: l, Label: l.Label(), Extension: l.Extension()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) rules(w http.ResponseWriter, r *http.Request) {
	language, err := lang.Parse(r.URL.Query().Get("language"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	infos, err := s.analyzer.Rules(language)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// ReviewRequest is the body of POST /v1/review.
type ReviewRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Path     string `json:"path,omitempty"`
	Save     bool   `json:"save,omitempty"`
}

// ReviewResponse is the body returned by POST /v1/review. ID is set only
// when the report was saved.
type ReviewResponse struct {
	ID string `json:"id,omitempty"`
	*report.Report
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	language, err := lang.Parse(req.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rep, err := s.analyzer.Review(r.Context(), req.Code, language)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := ReviewResponse{Report: rep}
	if req.Save {
		if s.store == nil {
			writeError(w, http.StatusServiceUnavailable, errors.New("report store not configured"))
			return
		}
		id, err := s.store.WriteReport(r.Context(), &store.Record{Path: req.Path, Report: rep})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.ID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("report store not configured"))
		return
	}
	ids, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		ids = ids[:min(limit, len(ids))]
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

type storedReview struct {
	*store.Record
	Verdict *store.Verdict `json:"verdict,omitempty"`
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("report store not configured"))
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.store.ReadReport(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := storedReview{Record: rec}
	verdict, err := s.store.ReadVerdict(r.Context(), id)
	switch {
	case err == nil:
		out.Verdict = verdict
	case !errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("metrics not enabled"))
		return
	}
	writeJSON(w, http.StatusOK, s.collector.GetStats())
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
