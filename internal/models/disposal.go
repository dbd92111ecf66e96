// internal/models/disposal.go
package models

// DisposalRecord is the canonical waste-disposal guidance for one scanned item.
type DisposalRecord struct {
	Item                string   `json:"item"`
	Material            string   `json:"material"`
	Category            string   `json:"category"`
	DisposalMethod      string   `json:"disposal_method"`
	DisposalSteps       []string `json:"disposal_steps"`
	RecyclingAvailable  bool     `json:"recycling_available"`
	Hazards             []string `json:"hazards,omitempty"` // nil when the model sent none
	LocalNotes          string   `json:"local_notes"`
	LocationInfo        *string  `json:"location_info,omitempty"`
	EnvironmentalImpact *string  `json:"environmental_impact,omitempty"`
}
