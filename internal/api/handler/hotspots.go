package handler

import (
	"net/http"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/hotspot"
	"github.com/airsentry/airsentry/internal/pollution"
)

// Hotspot detection methods.
const (
	methodGrid     = "grid"
	methodClusters = "clusters"
)

// HotspotsHandler serves detected high-pollution areas.
type HotspotsHandler struct {
	store    *pollution.Store
	detector *hotspot.Detector
}

// NewHotspotsHandler creates a new HotspotsHandler.
func NewHotspotsHandler(store *pollution.Store, detector *hotspot.Detector) *HotspotsHandler {
	return &HotspotsHandler{store: store, detector: detector}
}

// GetHotspots handles GET /v1/hotspots?gas=&method=&limit=.
// Method "grid" (default) aggregates by spatial cell; "clusters" uses the
// trained model and degrades to an empty list when no model exists.
func (h *HotspotsHandler) GetHotspots(w http.ResponseWriter, r *http.Request) {
	gas, ok := gasParam(w, r)
	if !ok {
		return
	}

	method := r.URL.Query().Get("method")
	if method == "" {
		method = methodGrid
	}
	if method != methodGrid && method != methodClusters {
		response.BadRequest(w, r, "unknown detection method", []models.FieldError{
			{Field: "method", Message: "must be grid or clusters", Code: "INVALID_ENUM"},
		})
		return
	}

	snap := h.store.Current()
	if snap == nil {
		response.NoData(w, r, "no refresh cycle has completed yet")
		return
	}

	var spots []hotspot.Hotspot
	if method == methodClusters {
		spots = h.detector.DetectClusters(r.Context(), snap, gas)
	} else {
		spots = h.detector.DetectGrid(snap, gas)
	}

	if limit := intParam(r, "limit", 0); limit > 0 && len(spots) > limit {
		spots = spots[:limit]
	}

	out := make([]models.HotspotDTO, len(spots))
	for i, s := range spots {
		out[i] = models.HotspotDTO{
			Rank:      s.Rank,
			Lat:       s.Lat,
			Lon:       s.Lon,
			Pollutant: string(s.Pollutant),
			Value:     s.Value,
			Count:     s.Count,
			ClusterID: s.ClusterID,
			Category:  string(s.Category),
			Color:     s.Color,
			Location:  s.Location,
		}
	}

	response.JSON(w, r, http.StatusOK, models.HotspotsResponse{
		Pollutant: string(gas),
		Method:    method,
		Count:     len(out),
		Hotspots:  out,
	})
}
