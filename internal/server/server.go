// Package server exposes a loaded schema description and its derived shapes
// over a small read-only HTTP API. It serves a static, already-introspected
// description; it never touches a live database.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/typeshape/typeshape"
	"github.com/typeshape/typeshape/internal/errs"
	"github.com/typeshape/typeshape/internal/logger"
)

// Server serves one immutable schema description. Derivations are pure, so
// handlers need no locking.
type Server struct {
	schema *typeshape.Schema
	log    *logger.Logger
}

// New creates a Server for the given schema description.
func New(schema *typeshape.Schema, log *logger.Logger) *Server {
	if log == nil {
		log = logger.New(nil)
	}
	return &Server{schema: schema, log: log}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/schema", s.handleSchema)
	r.Get("/tables", s.handleTables)
	r.Get("/tables/{table}/shapes", s.handleShapes)
	r.Post("/tables/{table}/projected", s.handleProjected)
	return r
}

// ListenAndServe runs the HTTP server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.With().Str("addr", addr).Logger().Info("schema server listening")
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.schema)
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(s.schema.Tables))
	for _, t := range s.schema.Tables {
		names = append(names, t.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": names})
}

// handleShapes returns the three derived shapes of one table.
func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	table := s.schema.Table(name)
	if table == nil {
		writeError(w, errs.Newf(errs.ErrKindNotFound, "unknown table %q", name))
		return
	}

	writeJSON(w, http.StatusOK, map[string]*typeshape.Shape{
		"row":    typeshape.DeriveRowShape(table),
		"insert": typeshape.DeriveInsertShape(table),
		"update": typeshape.DeriveUpdateShape(table),
	})
}

// handleProjected derives the shape of a caller-supplied projection.
func (s *Server) handleProjected(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	var p typeshape.Projection
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid projection body", err))
		return
	}

	shape, err := typeshape.DeriveProjectedShape(s.schema, name, &p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shape)
}

// requestLogger logs one event per request in the access-log style.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error kinds to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsNotFound(err):
		status = http.StatusNotFound
	case errs.IsInvalidInput(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
