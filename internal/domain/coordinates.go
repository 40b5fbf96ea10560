package domain

// Immutable named geographic coordinate (latitude, longitude).
// Locations are produced by autocomplete and supplied by clients as trip waypoints.
type Location struct {
	Name string
	Lat  float64
	Lng  float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (l Location) CoordsToList() []float64 { return []float64{l.Lng, l.Lat} }

// Report whether the coordinate lies inside the WGS84 value ranges.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}
