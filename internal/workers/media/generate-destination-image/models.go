// internal/workers/media/generate-destination-image/models.go
package generatedestinationimage

type Input struct {
	PlaceName string `json:"placeName"`
	PlaceType string `json:"placeType"`
	Refresh   bool   `json:"refresh"` // drop the cached image before resolving
}

type Output struct {
	ImageURL string `json:"imageUrl"`
}
