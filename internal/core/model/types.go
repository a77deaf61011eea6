package model

import "math"

// EntityID identifies the entity (a virus) that detail records are grouped by.
type EntityID int64

// DetailRecord is one observation of an entity. Numeric fields are coerced at
// load time; a field that failed to coerce holds NaN.
type DetailRecord struct {
	EntityID          EntityID `json:"virus_id"`
	MinutesSinceFirst float64  `json:"minutes_since_first"`
	Media             string   `json:"media"`
	Time              string   `json:"time"`
	Day               string   `json:"day"`
	Reach             float64  `json:"num_rep"`
	Title             string   `json:"title"`
	Image             string   `json:"virus_image"`
}

// HasElapsed reports whether the elapsed time coerced to a finite number.
func (r DetailRecord) HasElapsed() bool {
	return !math.IsNaN(r.MinutesSinceFirst) && !math.IsInf(r.MinutesSinceFirst, 0)
}

// Label is the text drawn next to the record's timeline marker.
func (r DetailRecord) Label() string {
	return r.Time + " " + r.Media
}
