// Package server exposes the analysis pipeline as a JSON API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/wellsite-tools/mudwatch/internal/analysis"
	"github.com/wellsite-tools/mudwatch/internal/report"
)

// Server is the HTTP server for job analytics.
type Server struct {
	engine *analysis.Engine
	mux    *http.ServeMux
}

// New creates a new Server.
func New(engine *analysis.Engine) *Server {
	s := &Server{engine: engine, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/", s.handleJobSubpath)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.engine.ListJobs()
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// handleJobSubpath dispatches /api/jobs/{id}/... routes.
func (s *Server) handleJobSubpath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	job := parts[0]

	switch {
	case len(parts) == 2 && parts[1] == "summary":
		s.handleSummary(w, job)
	case len(parts) == 2 && parts[1] == "timeline":
		s.handleTimeline(w, r, job)
	case len(parts) == 2 && parts[1] == "events":
		s.handleEvents(w, r, job)
	case len(parts) == 3 && parts[1] == "chemicals" && parts[2] == "new":
		s.handleNewChemicals(w, job)
	case len(parts) == 3 && parts[1] == "insights":
		s.handleInsights(w, job, parts[2])
	case len(parts) == 3 && parts[1] == "report":
		s.handleReport(w, r, job, parts[2])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, job string) {
	summary, err := s.engine.Summary(job)
	if err != nil {
		s.pipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request, job string) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	days, err := s.engine.Timeline(job, start, end)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":   job,
		"days":     len(days),
		"timeline": days,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, job string) {
	q := r.URL.Query()
	start, end, severity := q.Get("start"), q.Get("end"), q.Get("severity")
	result, err := s.engine.Events(job, start, end, strings.ToLower(severity))
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events":       result.Events,
		"causal_links": result.Links,
		"total":        result.Total,
		"filters": map[string]string{
			"start":    start,
			"end":      end,
			"severity": severity,
		},
	})
}

func (s *Server) handleNewChemicals(w http.ResponseWriter, job string) {
	chemicals, err := s.engine.NewChemicals(job)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":        job,
		"new_chemicals": chemicals,
		"total":         len(chemicals),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, job, date string) {
	insights, err := s.engine.Insights(job, date)
	if err != nil {
		s.pipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, job, date string) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	shift := strings.ToLower(q.Get("shift"))

	data, err := s.engine.Report(job, date, shift)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	switch format {
	case "", "json":
		writeJSON(w, http.StatusOK, data)
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, report.Markdown(data))
	case "html":
		page, err := report.HTML(data)
		if err != nil {
			s.serverError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unknown format: " + format,
		})
	}
}

// pipelineError maps not-found pipeline errors to 404, the rest to 500.
func (s *Server) pipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, analysis.ErrNoSuchJob) ||
		errors.Is(err, analysis.ErrNoTimeline) ||
		errors.Is(err, analysis.ErrNoSuchDay) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.serverError(w, err)
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	log.Printf("Request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Serve starts the HTTP server on the given port.
func Serve(engine *analysis.Engine, port int) error {
	srv := New(engine)
	addr := "127.0.0.1:" + strconv.Itoa(port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
