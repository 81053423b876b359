package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"asset-angel-api/internal/logging"
	"asset-angel-api/internal/models"
	"asset-angel-api/internal/store"
	"asset-angel-api/pkg/importer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AssetLister is the read side the exporter needs
type AssetLister interface {
	ListAssets(f store.AssetFilter) []models.Asset
}

// ExportsHandler serves the asset register as a workbook
type ExportsHandler struct {
	Assets AssetLister
	Now    func() time.Time
}

func NewExportsHandler(assets AssetLister) *ExportsHandler {
	return &ExportsHandler{Assets: assets, Now: time.Now}
}

// ExportExcel writes every asset matching the q, status and category
// query parameters as an .xlsx attachment.
func (h *ExportsHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AssetFilter{Query: q.Get("q")}
	if v := q.Get("status"); v != "" {
		status, err := models.ParseAssetStatus(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Status = status
	}
	if v := q.Get("category"); v != "" {
		category, err := models.ParseAssetCategory(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Category = category
	}

	assets := h.Assets.ListAssets(filter)

	// Render fully before writing headers so a failure can still be a 500
	var buf bytes.Buffer
	if err := importer.ExportAssets(&buf, assets); err != nil {
		logging.FromContext(r.Context()).Error("asset export failed", "error", err)
		http.Error(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("assets-%s.xlsx", h.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
