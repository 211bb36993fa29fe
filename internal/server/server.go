// Package server serves a read-only preview of a project over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/project                                  project summary (JSON)
//	GET  /api/scenes/{index}                           scene placements (JSON)
//	GET  /scenes/{index}.{svg,png}                     scene snapshot
//	GET  /transitions/{from}/{to}/frames/{frame}.{svg,png}
//	                                                   one transition frame
//	POST /api/reload                                   re-read the project file
//
// Errors are returned as JSON objects carrying the error code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/formation/pkg/core/stage"
	"github.com/matzehuels/formation/pkg/core/transition"
	ferrors "github.com/matzehuels/formation/pkg/errors"
	pio "github.com/matzehuels/formation/pkg/io"
	"github.com/matzehuels/formation/pkg/observability"
	"github.com/matzehuels/formation/pkg/render"
)

// Server holds the project being previewed.
type Server struct {
	mu      sync.RWMutex
	project *pio.Project
	path    string

	runner *render.Runner
	opts   render.Options
	logger *log.Logger
	router chi.Router
}

// New creates a server for p. path is the file p was loaded from and is used
// by the reload endpoint; it may be empty.
func New(p *pio.Project, path string, runner *render.Runner, opts render.Options, logger *log.Logger) *Server {
	if runner == nil {
		runner = render.NewRunner(nil, nil, logger)
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{project: p, path: path, runner: runner, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/project", s.handleProject)
	r.Get("/api/scenes/{index}", s.handleSceneJSON)
	r.Post("/api/reload", s.handleReload)
	r.Get("/scenes/{file}", s.handleSceneImage)
	r.Get("/transitions/{from}/{to}/frames/{file}", s.handleFrameImage)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Project returns the project currently served.
func (s *Server) Project() *pio.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// SetProject replaces the served project.
func (s *Server) SetProject(p *pio.Project) {
	s.mu.Lock()
	s.project = p
	s.mu.Unlock()
}

// Reload re-reads the project from its file.
func (s *Server) Reload() error {
	if s.path == "" {
		return ferrors.New(ferrors.ErrCodeUnsupported, "project was not loaded from a file")
	}
	p, err := pio.ImportJSON(s.path)
	if err != nil {
		return err
	}
	s.SetProject(p)
	s.logger.Info("Reloaded project", "path", s.path, "scenes", len(p.Formations))
	return nil
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
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
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// observe reports every request to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

type sceneSummary struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Dancers int    `json:"dancers"`
}

type projectSummary struct {
	AppVersion string         `json:"appVersion"`
	Stage      stage.Config   `json:"stage"`
	Current    int            `json:"current"`
	Scenes     []sceneSummary `json:"scenes"`
}

type sceneView struct {
	Index   int                    `json:"index"`
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Stage   stage.Config           `json:"stage"`
	Dancers []transition.Placement `json:"dancers"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	p := s.Project()
	out := projectSummary{
		AppVersion: p.Meta.AppVersion,
		Stage:      p.Stage,
		Current:    p.Current,
		Scenes:     make([]sceneSummary, len(p.Formations)),
	}
	for i, f := range p.Formations {
		out.Scenes[i] = sceneSummary{Index: i, ID: f.ID, Name: f.Name, Dancers: len(f.Dancers)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSceneJSON(w http.ResponseWriter, r *http.Request) {
	p := s.Project()
	i, err := index(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := p.Scene(i)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sceneView{
		Index:   i,
		ID:      f.ID,
		Name:    f.Name,
		Stage:   p.Stage,
		Dancers: transition.Still(f.Dancers),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleProject(w, r)
}

func (s *Server) handleSceneImage(w http.ResponseWriter, r *http.Request) {
	i, format, err := imageIndex(chi.URLParam(r, "file"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.opts
	opts.Format = format
	data, _, err := s.runner.Scene(r.Context(), s.Project(), i, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeImage(w, format, data)
}

func (s *Server) handleFrameImage(w http.ResponseWriter, r *http.Request) {
	from, err := index(chi.URLParam(r, "from"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := index(chi.URLParam(r, "to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	frame, format, err := imageIndex(chi.URLParam(r, "file"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.opts
	opts.Format = format
	data, err := s.runner.Frame(r.Context(), s.Project(), from, to, frame, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeImage(w, format, data)
}

// =============================================================================
// Helpers
// =============================================================================

func index(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, ferrors.New(ferrors.ErrCodeNotFound, "invalid index %q", s)
	}
	return i, nil
}

// imageIndex splits "3.svg" or "3.png" into an index and a render format.
func imageIndex(file string) (int, string, error) {
	for _, format := range []string{render.FormatSVG, render.FormatPNG} {
		if name, ok := strings.CutSuffix(file, "."+format); ok {
			i, err := index(name)
			return i, format, err
		}
	}
	return 0, "", ferrors.New(ferrors.ErrCodeNotFound, "not found: %s", file)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := ferrors.HTTPStatus(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	code := ferrors.GetCode(err)
	if code == "" {
		code = ferrors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: string(code), Message: ferrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeImage(w http.ResponseWriter, format string, data []byte) {
	contentType := "image/svg+xml"
	if format == render.FormatPNG {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}
