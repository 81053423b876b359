package internal

import (
	"net/http"
	"strings"

	"asset-angel-api/internal/auth"
	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"

	"github.com/go-chi/chi/v5"
)

// listRepairRequests lists every repair request for triage in filing order
// unless sort says otherwise
func (s *Server) listRepairRequests(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	values := r.URL.Query()

	filter := store.RepairFilter{Department: strings.TrimSpace(values.Get("department"))}
	if v := values.Get("status"); v != "" {
		status, err := models.ParseIssueStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
			return
		}
		filter.Status = status
	}

	views := s.Store.ListAllRepairRequests(filter)
	sortItems(views, params.sort, repairSort)
	sendListResponse(w, views, params)
}

func (s *Server) updateRepairRequestStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd models.RepairStatusUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	v, err := s.Store.UpdateRepairRequestStatus(id, upd)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("repair request triaged", "request_id", v.ID, "status", v.Status)
	writeJSON(w, http.StatusOK, v)
}

// sessionUser returns the id of the caller. MustRole guarantees a session.
func sessionUser(r *http.Request) string {
	if session := auth.SessionFromContext(r.Context()); session != nil {
		return session.User.ID
	}
	return ""
}

// listMyAssets lists the assets the caller currently holds
func (s *Server) listMyAssets(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	assets := s.Store.ListUserActiveAssets(sessionUser(r))
	sortItems(assets, params.sort, assetSort)
	sendListResponse(w, assets, params)
}

func (s *Server) listMyRepairRequests(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	views := s.Store.ListRepairRequestsForUser(sessionUser(r))
	sortItems(views, params.sort, repairSort)
	sendListResponse(w, views, params)
}

// createMyRepairRequest files a request against an asset the caller holds
func (s *Server) createMyRepairRequest(w http.ResponseWriter, r *http.Request) {
	var in models.RepairRequestInput
	if !decodeJSON(w, r, &in) {
		return
	}

	v, err := s.Store.CreateRepairRequest(sessionUser(r), in)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("repair request filed",
		"request_id", v.ID, "asset_id", v.AssetID, "priority", v.Priority)
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) getMyDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.EmployeeStats(sessionUser(r)))
}
