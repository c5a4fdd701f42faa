// Package dashboard serves the survey charts over HTTP. Every request runs the pipeline
// afresh; nothing is cached between requests.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"mhsurvey/internal/config"
	"mhsurvey/internal/loader"
	"mhsurvey/internal/logger"
	"mhsurvey/internal/models"
	"mhsurvey/internal/pipeline"
	"mhsurvey/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*
var embeddedFiles embed.FS

// Runner produces one pipeline result per call.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg       *config.Config
	runner    Runner
	log       *logger.Logger
	router    *chi.Mux
	templates *template.Template
	http      *http.Server
}

// NewServer builds the router and templates.
func NewServer(cfg *config.Config, runner Runner, log *logger.Logger) (*Server, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		runner:    runner,
		log:       log,
		router:    chi.NewRouter(),
		templates: templates,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/dashboard.svg", s.handleSVG)
	s.router.Get("/api/report", s.handleReport)
	s.router.Get("/report.md", s.handleMarkdown)
	s.router.Get("/healthz", s.handleHealth)
}

// requestLogger logs one line per request through the project logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		s.log.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	result, err := s.runner.Run(r.Context())
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}

	return result, true
}

// statusFor maps pipeline errors to HTTP status codes. A source problem is an upstream
// failure; anything else is ours.
func statusFor(err error) int {
	if errors.Is(err, loader.ErrSourceUnreadable) || errors.Is(err, loader.ErrMissingColumn) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.log.Error("pipeline failed", "status", status, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

type indexPage struct {
	Title  string
	Report models.Report
	SVG    template.HTML
}

// inlineSVG drops the XML prolog so the document can sit inside HTML. The renderer escapes
// all text it writes.
func inlineSVG(doc []byte) template.HTML {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		doc = doc[i:]
	}

	return template.HTML(doc)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	result, ok := s.run(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer

	page := indexPage{
		Title:  s.cfg.Render.Title,
		Report: result.Report,
		SVG:    inlineSVG(pipeline.EncodeSVG(result, render.FromConfig(s.cfg.Render))),
	}

	if err := s.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		s.log.Error("template error", "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	result, ok := s.run(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(pipeline.EncodeSVG(result, render.FromConfig(s.cfg.Render)))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.run(w, r)
	if !ok {
		return
	}

	data, err := pipeline.EncodeJSON(result, s.cfg.Output.PrettyPrint)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	result, ok := s.run(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write(pipeline.EncodeMarkdown(result, s.cfg.Render.Title))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}
