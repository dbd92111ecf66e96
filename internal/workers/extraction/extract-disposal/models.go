// internal/workers/extraction/extract-disposal/models.go
package extractdisposal

import "ecoscan-workers/internal/models"

type Input struct {
	MessageText *string `json:"messageText"`
	UserID      string  `json:"userId"`
}

type Output struct {
	Found       bool                   `json:"found"`
	Record      *models.DisposalRecord `json:"record"`
	DisplayText string                 `json:"displayText"`
	Points      *models.PointsState    `json:"points,omitempty"`
}
