package models

// WeatherObservationDTO is current conditions at one monitored city.
type WeatherObservationDTO struct {
	City          string    `json:"city,omitempty"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"` // m/s
	WindDirection float64   `json:"windDirection"`
	WindCategory  string    `json:"windCategory"`
	Precipitation float64   `json:"precipitation"`
	ObservedAt    Timestamp `json:"observedAt"`
}

// CurrentWeatherResponse lists conditions at the monitored cities.
type CurrentWeatherResponse struct {
	Count        int                     `json:"count"`
	Observations []WeatherObservationDTO `json:"observations"`
}
