// internal/workers/extraction/extract-recommendations/models.go
package extractrecommendations

import "ecoscan-workers/internal/models"

type Input struct {
	MessageText *string `json:"messageText"`
}

type Output struct {
	Found           bool                    `json:"found"`
	IntroText       string                  `json:"introText"`
	Recommendations []models.Recommendation `json:"recommendations"`
	DisplayText     string                  `json:"displayText"` // reply with the payload removed
}
