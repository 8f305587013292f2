package handler

import (
	"net/http"
	"time"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/history"
	"github.com/airsentry/airsentry/internal/pollution"
)

// defaultRecentDays bounds /data/recent when the client does not say.
const defaultRecentDays = 7

// DataHandler serves the fused snapshot and the accumulated history.
type DataHandler struct {
	store   *pollution.Store
	history history.Repository
}

// NewDataHandler creates a new DataHandler. History may be nil when the
// process runs without a database; /data/recent then reports no data.
func NewDataHandler(store *pollution.Store, repo history.Repository) *DataHandler {
	return &DataHandler{store: store, history: repo}
}

// GetCurrent handles GET /v1/data/current - the fused snapshot.
func (h *DataHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		response.NoData(w, r, "no refresh cycle has completed yet")
		return
	}

	limit := intParam(r, "limit", 0)
	rows := snap.Measurements
	truncated := false
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		truncated = true
	}

	out := make([]models.MeasurementDTO, len(rows))
	for i, m := range rows {
		out[i] = toMeasurementDTO(m)
	}

	response.JSON(w, r, http.StatusOK, models.SnapshotResponse{
		FetchedAt:    models.Timestamp(snap.FetchedAt),
		Count:        len(snap.Measurements),
		SourceCounts: snap.SourceCounts,
		Measurements: out,
		Truncated:    truncated,
	})
}

// GetRecent handles GET /v1/data/recent - accumulated daily history.
// Query: gas (default pm25), location (optional substring), days (default 7).
func (h *DataHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	gas, ok := gasParam(w, r)
	if !ok {
		return
	}
	if h.history == nil {
		response.NoData(w, r, "history storage is not configured")
		return
	}

	days := intParam(r, "days", defaultRecentDays)
	location := r.URL.Query().Get("location")

	var (
		records []history.Record
		err     error
	)
	if location != "" {
		records, err = h.history.ByLocation(r.Context(), location, string(gas), 0)
	} else {
		since := time.Now().UTC().AddDate(0, 0, -days)
		records, err = h.history.Since(r.Context(), string(gas), since)
	}
	if err != nil {
		response.InternalError(w, r, "history query failed")
		return
	}

	out := make([]models.HistoryRecordDTO, len(records))
	for i, rec := range records {
		out[i] = models.HistoryRecordDTO{
			StationUID: rec.StationUID,
			Pollutant:  rec.Pollutant,
			Date:       models.Timestamp(rec.Date),
			Value:      rec.Value,
			Location:   rec.Location,
			Lat:        rec.Lat,
			Lon:        rec.Lon,
		}
	}

	response.JSON(w, r, http.StatusOK, models.RecentDataResponse{
		Pollutant: string(gas),
		Location:  location,
		Days:      days,
		Count:     len(out),
		Records:   out,
	})
}

func toMeasurementDTO(m pollution.Measurement) models.MeasurementDTO {
	return models.MeasurementDTO{
		Timestamp: models.Timestamp(m.Timestamp),
		Lat:       m.Lat,
		Lon:       m.Lon,
		Pollutant: string(m.Pollutant),
		Value:     m.Value,
		Unit:      m.Unit,
		Source:    m.Source,
		Location:  m.Location,
		StationID: m.StationID,
	}
}
