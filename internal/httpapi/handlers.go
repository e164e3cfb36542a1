package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/harborline/wayplan/internal/planner"
	"github.com/harborline/wayplan/internal/planstore"
)

// generateRequest is the POST /api/plans body. Description, when present,
// replaces the AI-authored plan description before the plan is stored.
type generateRequest struct {
	Goal        string `json:"goal"`
	Description string `json:"description,omitempty"`
}

// generateResponse is the 201 body: the stored record plus the trip id
// correlating it with the audit trail.
type generateResponse struct {
	planstore.Record
	TripID string `json:"trip_id"`
}

// listResponse wraps listing and search results.
type listResponse struct {
	Plans []planstore.Record `json:"plans"`
	Count int                `json:"count"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		writeError(w, http.StatusBadRequest, "goal is required")
		return
	}

	tripID := uuid.NewString()
	plan, err := s.orch.GeneratePlan(r.Context(), req.Goal, tripID)
	if err != nil {
		var f *planner.Failure
		if errors.As(err, &f) {
			writeFailure(w, f)
			return
		}
		log.Printf("WARNING: httpapi: generate plan: %v", err)
		writeError(w, http.StatusInternalServerError, "plan generation failed")
		return
	}

	if req.Description != "" {
		plan.Description = req.Description
	}

	rec, err := s.store.Create(r.Context(), plan)
	if err != nil {
		s.storeFail(w, "store plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse{Record: *rec, TripID: tripID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	records, err := s.store.List(r.Context(), parsePagination(r))
	if err != nil {
		s.storeFail(w, "list plans", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Plans: records, Count: len(records)})
}

// handleGet also serves GET /api/plans/search: httprouter cannot register
// a static /search route beside the :id wildcard, so the dispatch happens
// here.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "search" {
		s.handleSearch(w, r)
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.storeFail(w, "get plan", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("goal"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "goal query parameter is required")
		return
	}

	records, err := s.store.Search(r.Context(), term, parsePagination(r))
	if err != nil {
		s.storeFail(w, "search plans", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Plans: records, Count: len(records)})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var plan planner.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan body: "+err.Error())
		return
	}
	if strings.TrimSpace(plan.Goal) == "" || len(plan.Days) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "plan must carry a goal and at least one day")
		return
	}

	rec, err := s.store.Update(r.Context(), ps.ByName("id"), &plan)
	if err != nil {
		s.storeFail(w, "update plan", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	status := planstore.Status(r.URL.Query().Get("status"))
	if !planstore.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "status must be one of active, completed, archived")
		return
	}

	rec, err := s.store.UpdateStatus(r.Context(), ps.ByName("id"), status)
	if err != nil {
		s.storeFail(w, "update plan status", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.store.Delete(r.Context(), ps.ByName("id")); err != nil {
		s.storeFail(w, "delete plan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func (s *Server) handleHealthDetailed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	components := make(map[string]string, len(s.checks))
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			components[c.Name] = "unavailable: " + err.Error()
			status = "degraded"
		} else {
			components[c.Name] = "available"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"service":    serviceName,
		"version":    s.version,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": components,
	})
}

// storeFail maps store errors onto 404 or 500 responses.
func (s *Server) storeFail(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, planstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	log.Printf("WARNING: httpapi: %s: %v", action, err)
	writeError(w, http.StatusInternalServerError, "storage failure")
}

// parsePagination reads limit and offset query parameters, defaulting to
// 10 records and capping at 100.
func parsePagination(r *http.Request) planstore.ListOptions {
	opts := planstore.ListOptions{Limit: 10}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		opts.Offset = v
	}
	return opts
}
