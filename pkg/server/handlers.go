package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/buildinfo"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/profile"
	"github.com/matzehuels/atlas/pkg/render"
	"github.com/matzehuels/atlas/pkg/source"
	"github.com/matzehuels/atlas/pkg/submit"
	"github.com/matzehuels/atlas/pkg/viewport"
)

// Response messages.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgLoading          = "Projects are still loading"
	MsgLoadFailed       = "Failed to load projects"
	MsgInvalidBody      = "Invalid request body"
	MsgNotFound         = "Not found"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	maxBodyBytes       = 64 << 10
)

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, MsgNotFound)
	})

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.handleProjects)
		r.Get("/layout", s.handleLayout)
		r.Get("/atlas.svg", s.handleSVG)
		r.Get("/search", s.handleSearch)
		r.Get("/locate/{id}", s.handleLocate)
		r.Post("/submit-project", s.handleSubmit)
		r.Post("/validate-profile", s.handleValidateProfile)
		r.Get("/live", s.handleLive)
	})
	return r
}

// =============================================================================
// Read routes
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   snap.state.Status,
		"version":  snap.state.Version,
		"projects": len(snap.state.Projects),
		"clients":  s.hub.Len(),
		"build":    buildinfo.Get(),
	})
}

// ready writes the loading or failure response and returns nil unless the
// snapshot holds a usable layout.
func (s *Server) ready(w http.ResponseWriter) *snapshot {
	snap := s.current()
	switch snap.state.Status {
	case source.StatusLoading:
		w.Header().Set("Retry-After", "2")
		writeError(w, http.StatusServiceUnavailable, MsgLoading)
		return nil
	case source.StatusFailed:
		writeError(w, http.StatusBadGateway, MsgLoadFailed)
		return nil
	}
	if snap.err != nil {
		writeError(w, http.StatusInternalServerError, errors.UserMessage(snap.err))
		return nil
	}
	return snap
}

type projectsResponse struct {
	Version    string           `json:"version"`
	FetchedAt  time.Time        `json:"fetchedAt"`
	Stale      bool             `json:"stale,omitempty"`
	Projects   []atlas.Project  `json:"projects"`
	Categories []atlas.Category `json:"categories"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	snap := s.ready(w)
	if snap == nil {
		return
	}
	projects := snap.state.Projects
	if projects == nil {
		projects = []atlas.Project{}
	}
	writeJSON(w, http.StatusOK, projectsResponse{
		Version:    snap.state.Version,
		FetchedAt:  snap.state.FetchedAt,
		Stale:      snap.state.Err != nil,
		Projects:   projects,
		Categories: snap.layout.Categories,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap := s.ready(w)
	if snap == nil {
		return
	}
	data, err := render.RenderJSON(snap.layout,
		render.WithJSONVersion(snap.state.Version),
		render.WithJSONHighlight(r.URL.Query().Get("highlight")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.UserMessage(err))
		return
	}
	w.Header().Set("ETag", strconv.Quote(snap.state.Version))
	w.Header().Set("Content-Type", render.FormatJSON.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	snap := s.ready(w)
	if snap == nil {
		return
	}
	opts := pipeline.Options{
		Formats:     []string{string(render.FormatSVG)},
		Theme:       s.opts.Theme,
		Highlight:   r.URL.Query().Get("highlight"),
		Interactive: s.opts.Interactive,
	}
	if t := r.URL.Query().Get("theme"); t != "" {
		opts.Theme = t
	}
	artifacts, err := s.runner.Render(r.Context(), snap.layout, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrCodeInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, status, errors.UserMessage(err))
		return
	}
	w.Header().Set("Content-Type", render.FormatSVG.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[string(render.FormatSVG)])
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []atlas.Project `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	snap := s.ready(w)
	if snap == nil {
		return
	}
	q := r.URL.Query().Get("q")
	limit, err := intParam(r, "limit", defaultSearchLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxSearchLimit)
	results := atlas.Search(snap.state.Projects, snap.layout.Categories, q, limit)
	if results == nil {
		results = []atlas.Project{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: q, Results: results})
}

type locateResponse struct {
	ID        string             `json:"id"`
	Category  string             `json:"category"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	Transform viewport.Transform `json:"transform"`
}

// handleLocate resolves a deep link: the canvas point of a project and the
// transform that centers it in a vw x vh viewport.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	snap := s.ready(w)
	if snap == nil {
		return
	}
	id := chi.URLParam(r, "id")
	pt, ok := snap.layout.Locate(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	vw, err1 := floatParam(r, "vw", snap.layout.Width)
	vh, err2 := floatParam(r, "vh", snap.layout.Height)
	scale, err3 := floatParam(r, "scale", 1)
	if err1 != nil || err2 != nil || err3 != nil || vw <= 0 || vh <= 0 || scale <= 0 {
		writeError(w, http.StatusBadRequest, "vw, vh and scale must be positive numbers")
		return
	}

	ctrl := viewport.New()
	ctrl.Set(viewport.Transform{Scale: scale})
	ctrl.CenterOn(pt.X, pt.Y, vw, vh)

	var category string
	for _, p := range snap.state.Projects {
		if p.ID == id {
			category = p.Category
			break
		}
	}
	writeJSON(w, http.StatusOK, locateResponse{ID: id, Category: category, X: pt.X, Y: pt.Y, Transform: ctrl.Transform()})
}

// =============================================================================
// Write routes
// =============================================================================

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.submit == nil {
		writeJSON(w, http.StatusInternalServerError, submit.Result{Error: submit.MsgNotConfigured})
		return
	}
	var d submit.Draft
	if err := decodeBody(r, &d); err != nil {
		writeJSON(w, http.StatusBadRequest, submit.Result{Error: MsgInvalidBody})
		return
	}
	res := s.submit.Submit(r.Context(), d)
	writeJSON(w, submitStatus(res), res)
}

func submitStatus(res submit.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCategory:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type profileRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleValidateProfile(w http.ResponseWriter, r *http.Request) {
	if s.profile == nil {
		writeJSON(w, http.StatusInternalServerError, profile.Result{Message: submit.MsgNotConfigured})
		return
	}
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, profile.Result{Status: profile.StatusInvalidFormat, Message: errors.MsgURLRequired})
		return
	}
	res := s.profile.Validate(r.Context(), req.URL)
	status := http.StatusOK
	switch res.Status {
	case profile.StatusInvalidFormat, profile.StatusWrongDomain:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	s.hub.ServeWS(w, r, Event{Type: EventHello, Version: snap.state.Version, Projects: len(snap.state.Projects)})
}

// categories returns the resolved categories of the current snapshot, or
// the base set before the first layout.
func (s *Server) categories() []atlas.Category {
	if snap := s.current(); len(snap.layout.Categories) > 0 {
		return snap.layout.Categories
	}
	return atlas.BaseCategories()
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}
