package internal

import (
	"net/http"

	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"

	"github.com/go-chi/chi/v5"
)

// listAssets handles asset listing with q, status and category filters
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	values := r.URL.Query()

	filter := store.AssetFilter{Query: params.q}
	if v := values.Get("status"); v != "" {
		status, err := models.ParseAssetStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
			return
		}
		filter.Status = status
	}
	if v := values.Get("category"); v != "" {
		category, err := models.ParseAssetCategory(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
			return
		}
		filter.Category = category
	}

	assets := s.Store.ListAssets(filter)
	sortItems(assets, params.sort, assetSort)
	sendListResponse(w, assets, params)
}

// listAvailableAssets lists assets that can be handed out. The except
// parameter keeps the asset of the assignment being edited in the list.
func (s *Server) listAvailableAssets(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	assets := s.Store.AvailableAssets(r.URL.Query().Get("except"))
	sortItems(assets, params.sort, assetSort)
	sendListResponse(w, assets, params)
}

// getAsset handles getting a single asset by ID
func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.Store.GetAsset(chi.URLParam(r, "id"))
	if !ok {
		notFound(w, "Asset")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var in models.AssetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	a, err := s.Store.CreateAsset(in)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("asset created", "asset_id", a.ID, "serial", a.SerialNumber)
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.AssetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	a, err := s.Store.UpdateAsset(id, in)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("asset updated", "asset_id", a.ID, "status", a.Status)
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.DeleteAsset(id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("asset deleted", "asset_id", id)
	w.WriteHeader(http.StatusNoContent)
}
