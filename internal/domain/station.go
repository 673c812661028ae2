package domain

// StationMetadata is a station record from the station-metadata document,
// keyed by "NET.STA".
type StationMetadata struct {
	Network   string   `json:"network"`
	Station   string   `json:"station"`
	SiteName  string   `json:"site_name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Elevation *float64 `json:"elevation,omitempty"`
	Channels  []string `json:"channels,omitempty"`
}

// Key returns the composite "NET.STA" key.
func (m StationMetadata) Key() string {
	return StationKey(m.Network, m.Station)
}

// DisplayName returns the site name, or the composite key when the record has none.
func (m StationMetadata) DisplayName() string {
	if m.SiteName != "" {
		return m.SiteName
	}
	return m.Key()
}

// StationKey joins a network and station code into the "NET.STA" form.
func StationKey(network, station string) string {
	return network + "." + station
}

// MapStation is a station marker for the map view.
type MapStation struct {
	Network   string   `json:"network"`
	Station   string   `json:"station"`
	SiteName  string   `json:"site_name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Elevation *float64 `json:"elevation"`
	Channels  []string `json:"channels"`
}
