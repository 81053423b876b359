package internal

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"

	"github.com/go-chi/chi/v5"
)

func assignmentFilter(r *http.Request, params listParams) store.AssignmentFilter {
	return store.AssignmentFilter{Query: params.q, UserID: r.URL.Query().Get("userId")}
}

// listAssignments lists the active assignments
func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	views := s.Store.ListAssignments(assignmentFilter(r, params))
	sortItems(views, params.sort, assignmentSort)
	sendListResponse(w, views, params)
}

// listAssignmentHistory lists active and returned assignments
func (s *Server) listAssignmentHistory(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	views := s.Store.ListAssignmentHistory(assignmentFilter(r, params))
	sortItems(views, params.sort, assignmentSort)
	sendListResponse(w, views, params)
}

func (s *Server) getAssignment(w http.ResponseWriter, r *http.Request) {
	v, ok := s.Store.GetAssignment(chi.URLParam(r, "id"))
	if !ok {
		notFound(w, "Assignment")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) createAssignment(w http.ResponseWriter, r *http.Request) {
	var in models.AssignmentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	v, err := s.Store.CreateAssignment(in)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("asset assigned",
		"assignment_id", v.ID, "asset_id", v.AssetID, "user_id", v.UserID)
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) updateAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.AssignmentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	v, err := s.Store.UpdateAssignment(id, in)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("assignment updated",
		"assignment_id", v.ID, "asset_id", v.AssetID, "user_id", v.UserID)
	writeJSON(w, http.StatusOK, v)
}

// returnAssignment closes an assignment. The body is optional.
func (s *Server) returnAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	var at time.Time
	if req.ReturnedAt != nil {
		at = *req.ReturnedAt
	}

	v, err := s.Store.ReturnAssignment(id, at, req.Notes)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("asset returned", "assignment_id", v.ID, "asset_id", v.AssetID)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.DeleteAssignment(id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("assignment deleted", "assignment_id", id)
	w.WriteHeader(http.StatusNoContent)
}
