// internal/workers/extraction/strip-embedded-json/models.go
package stripembeddedjson

type Input struct {
	MessageText *string `json:"messageText"`
}

type Output struct {
	DisplayText string `json:"displayText"`
}
