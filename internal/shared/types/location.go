package types

import "fmt"

// Location is a free-text place description with optional coordinates
type Location struct {
	Text      string   `json:"text"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// WithCoordinates returns a copy of l pinned to lat/lng
func (l Location) WithCoordinates(lat, lng float64) Location {
	l.Latitude = &lat
	l.Longitude = &lng
	return l
}

func (l Location) String() string {
	if l.HasCoordinates() {
		return fmt.Sprintf("%s (%.5f, %.5f)", l.Text, *l.Latitude, *l.Longitude)
	}
	return l.Text
}
