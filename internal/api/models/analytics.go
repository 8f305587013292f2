package models

// HotspotDTO is one detected high-pollution area.
type HotspotDTO struct {
	Rank      int     `json:"rank"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Pollutant string  `json:"pollutant"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
	ClusterID int     `json:"clusterId"`
	Category  string  `json:"category"`
	Color     string  `json:"color"`
	Location  string  `json:"location,omitempty"`
}

// HotspotsResponse lists detected hotspots.
type HotspotsResponse struct {
	Pollutant string       `json:"pollutant"`
	Method    string       `json:"method"` // "grid" or "clusters"
	Count     int          `json:"count"`
	Hotspots  []HotspotDTO `json:"hotspots"`
}

// PredictionResponse is one spatial point estimate.
type PredictionResponse struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Pollutant    string  `json:"pollutant"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
	Category     string  `json:"category"`
	Color        string  `json:"color"`
	StationsUsed int     `json:"stationsUsed"`
}

// ForecastResponse is one 24-hour city projection.
type ForecastResponse struct {
	City        string    `json:"city"`
	Pollutant   string    `json:"pollutant"`
	Labels      []string  `json:"labels"`
	Predictions []float64 `json:"predictions"`
	Mode        string    `json:"mode"`
	CurrentMean float64   `json:"currentMean"`
	Note        string    `json:"note,omitempty"`
}

// TrajectoryPointDTO is one projected position of one measurement.
type TrajectoryPointDTO struct {
	Origin        Point   `json:"origin"`
	Predicted     Point   `json:"predicted"`
	HoursAhead    int     `json:"hoursAhead"`
	Value         float64 `json:"value"`
	Pollutant     string  `json:"pollutant"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
}

// TrackingResponse lists wind-advected trajectories.
type TrackingResponse struct {
	Pollutant string               `json:"pollutant"`
	Horizon   int                  `json:"horizonHours"`
	Count     int                  `json:"count"`
	Points    []TrajectoryPointDTO `json:"points"`
}

// WarningDTO is one ranked influence warning.
type WarningDTO struct {
	Location      string  `json:"location"`
	MeanValue     float64 `json:"meanValue"`
	Score         float64 `json:"score"`
	WindSpeed     float64 `json:"windSpeedKmh"`
	WindDirection float64 `json:"windDirection"`
	Precipitation float64 `json:"precipitation"`
	Severity      string  `json:"severity"`
	Message       string  `json:"message"`
}

// WarningsResponse lists ranked influence warnings.
type WarningsResponse struct {
	Count    int          `json:"count"`
	Warnings []WarningDTO `json:"warnings"`
}
