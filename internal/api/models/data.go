package models

// MeasurementDTO is one fused measurement as served over the wire.
type MeasurementDTO struct {
	Timestamp Timestamp `json:"timestamp"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Pollutant string    `json:"pollutant"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Source    string    `json:"source"`
	Location  string    `json:"location,omitempty"`
	StationID string    `json:"stationId,omitempty"`
}

// SnapshotResponse is the current fused dataset.
type SnapshotResponse struct {
	FetchedAt    Timestamp        `json:"fetchedAt"`
	Count        int              `json:"count"`
	SourceCounts map[string]int   `json:"sourceCounts"`
	Measurements []MeasurementDTO `json:"measurements"`
	Truncated    bool             `json:"truncated,omitempty"`
}

// HistoryRecordDTO is one accumulated daily record.
type HistoryRecordDTO struct {
	StationUID string    `json:"stationUid"`
	Pollutant  string    `json:"pollutant"`
	Date       Timestamp `json:"date"`
	Value      float64   `json:"value"`
	Location   string    `json:"location,omitempty"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
}

// RecentDataResponse lists accumulated history records.
type RecentDataResponse struct {
	Pollutant string             `json:"pollutant"`
	Location  string             `json:"location,omitempty"`
	Days      int                `json:"days"`
	Count     int                `json:"count"`
	Records   []HistoryRecordDTO `json:"records"`
}

// GasStats summarizes the current snapshot for one pollutant.
type GasStats struct {
	Pollutant string  `json:"pollutant"`
	Unit      string  `json:"unit"`
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Std       float64 `json:"std"`
	Category  string  `json:"category"`
	Color     string  `json:"color"`
}

// StatsResponse wraps stats for one pollutant.
type StatsResponse struct {
	FetchedAt Timestamp `json:"fetchedAt"`
	Stats     GasStats  `json:"stats"`
}

// AllStatsResponse wraps stats for every pollutant with data.
type AllStatsResponse struct {
	FetchedAt Timestamp  `json:"fetchedAt"`
	Stats     []GasStats `json:"stats"`
}

// SourceStatsResponse reports per-source contribution to the snapshot.
type SourceStatsResponse struct {
	FetchedAt Timestamp      `json:"fetchedAt"`
	Total     int            `json:"total"`
	Sources   map[string]int `json:"sources"`
}

// PollutantInfo describes one supported pollutant and its grading scale.
type PollutantInfo struct {
	Pollutant  string             `json:"pollutant"`
	Name       string             `json:"name"`
	Unit       string             `json:"unit"`
	MaxScale   float64            `json:"maxScale"`
	Thresholds map[string]float64 `json:"thresholds"`
}

// PollutantsResponse lists every supported pollutant.
type PollutantsResponse struct {
	Pollutants []PollutantInfo `json:"pollutants"`
}
