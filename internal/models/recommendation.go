// internal/models/recommendation.go
package models

const (
	DefaultRecommendationType = "Outdoor Space"
	DefaultDifficulty         = "Easy"
)

// Recommendation is the canonical outdoor-space record rendered as a card.
// Slice fields are never nil once normalized.
type Recommendation struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Distance    string   `json:"distance"`
	Why         string   `json:"why"`
	BestTime    string   `json:"best_time"`
	Duration    string   `json:"duration"`
	Difficulty  string   `json:"difficulty"`
	Weather     *Weather `json:"weather,omitempty"`
	Transport   []string `json:"transport"`
	WhatToCarry []string `json:"what_to_carry"`
	SafetyNotes []string `json:"safety_notes"`

	// Enrichment from the location tool
	MapsURL  string   `json:"mapsUrl"`
	PhotoURL string   `json:"photoUrl"`
	Address  string   `json:"address"`
	Rating   *float64 `json:"rating,omitempty"`
}

type Weather struct {
	Condition   string `json:"condition"`
	Temperature string `json:"temperature"`
	Advice      string `json:"advice,omitempty"`
}

// IsValid reports whether the record carries the one required field.
func (r *Recommendation) IsValid() bool {
	return r != nil && r.Name != ""
}
