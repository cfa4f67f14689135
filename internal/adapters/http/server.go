// Package http exposes the engine and its stores as a JSON API, mirroring
// the surface a visual workflow builder frontend consumes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lattice-ai/lattice/pkg/domain"
	"github.com/lattice-ai/lattice/pkg/ports"
)

// Runner executes a stored workflow graph. Implemented by the Lattice facade.
type Runner interface {
	Execute(ctx context.Context, graph *domain.Graph, inputs map[string]any) (map[string]domain.Output, error)
}

// Server wires the HTTP handlers to the engine and the stores.
type Server struct {
	Runner    Runner
	Workflows ports.WorkflowStore
	Documents ports.DocumentStore
	Chat      ports.ChatStore
	Logger    *slog.Logger
}

// NewHandler builds the chi router for the given server.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/workflows", s.createWorkflow)
		r.Get("/workflows", s.listWorkflows)
		r.Get("/workflows/{id}", s.getWorkflow)
		r.Put("/workflows/{id}", s.updateWorkflow)
		r.Delete("/workflows/{id}", s.deleteWorkflow)
		r.Post("/run/{id}", s.runWorkflow)

		r.Post("/upload", s.upload)
		r.Get("/documents", s.listDocuments)

		r.Post("/chat/log", s.logChat)
		r.Get("/chat/history/{workflowID}", s.chatHistory)
	})
	return r
}

type workflowRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Data        domain.Graph `json:"data"`
}

type runRequest struct {
	Inputs map[string]any `json:"inputs"`
}

type runResponse struct {
	Status  string                   `json:"status"`
	Results map[string]domain.Output `json:"results"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createWorkflow(w http.ResponseWriter, r *http.Request) {
	var body workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	wf := &domain.Workflow{
		ID:          uuid.NewString(),
		Name:        body.Name,
		Description: body.Description,
		Data:        body.Data,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Workflows.Save(r.Context(), wf); err != nil {
		s.Logger.Error("failed to save workflow", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save workflow")
		return
	}
	writeOK(w, http.StatusCreated, wf)
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.Workflows.List(r.Context())
	if err != nil {
		s.Logger.Error("failed to list workflows", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list workflows")
		return
	}
	writeOK(w, http.StatusOK, workflows)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.Workflows.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.workflowError(w, err)
		return
	}
	writeOK(w, http.StatusOK, wf)
}

func (s *Server) updateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.Workflows.Get(r.Context(), id)
	if err != nil {
		s.workflowError(w, err)
		return
	}

	var body workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC()
	existing.Name = body.Name
	existing.Description = body.Description
	existing.Data = body.Data
	existing.UpdatedAt = &now
	if err := s.Workflows.Save(r.Context(), existing); err != nil {
		s.Logger.Error("failed to update workflow", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update workflow")
		return
	}
	writeOK(w, http.StatusOK, existing)
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := s.Workflows.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.workflowError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]string{"status": "success", "message": "Workflow deleted"})
}

func (s *Server) runWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.Workflows.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.workflowError(w, err)
		return
	}

	var body runRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := s.Runner.Execute(r.Context(), &wf.Data, body.Inputs)
	if err != nil {
		// Structural graph errors are the caller's to fix.
		if errors.Is(err, domain.ErrCycleDetected) || errors.Is(err, domain.ErrMalformedEdge) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Logger.Error("workflow run failed", "workflow_id", wf.ID, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, http.StatusOK, runResponse{Status: "success", Results: results})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := s.Documents.Store(r.Context(), header.Filename, contentType, f)
	if err != nil {
		s.Logger.Error("failed to store upload", "filename", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, "could not upload file")
		return
	}
	writeOK(w, http.StatusCreated, doc)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.Documents.List(r.Context())
	if err != nil {
		s.Logger.Error("failed to list documents", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeOK(w, http.StatusOK, docs)
}

func (s *Server) logChat(w http.ResponseWriter, r *http.Request) {
	var log domain.ChatLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.Chat.Append(r.Context(), &log); err != nil {
		s.Logger.Error("failed to append chat log", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store chat log")
		return
	}
	writeOK(w, http.StatusCreated, log)
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.Chat.History(r.Context(), chi.URLParam(r, "workflowID"))
	if err != nil {
		s.Logger.Error("failed to read chat history", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read chat history")
		return
	}
	writeOK(w, http.StatusOK, history)
}

func (s *Server) workflowError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrWorkflowNotFound) {
		writeError(w, http.StatusNotFound, "Workflow not found")
		return
	}
	s.Logger.Error("workflow store error", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeOK(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeOK(w, status, map[string]string{"detail": msg})
}
