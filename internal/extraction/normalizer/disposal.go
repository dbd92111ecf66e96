package normalizer

import (
	"fmt"
	"strings"

	"ecoscan-workers/internal/models"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// disposalShape only pins the discriminator. Everything else the model sends
// is taken as-is.
const disposalShape = `{
	"type": "object",
	"required": ["item"]
}`

var disposalSchema = mustCompile(disposalShape)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("normalizer: invalid schema: %v", err))
	}
	return s
}

// Disposal normalizes a waste-disposal payload. It is accepted only when it is
// an object with a top-level item key; fields keep their literal names.
func Disposal(payload gjson.Result) (*models.DisposalRecord, error) {
	result, err := disposalSchema.Validate(gojsonschema.NewStringLoader(payload.Raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrShapeMismatch, describe(result.Errors()))
	}

	rec := &models.DisposalRecord{
		Item:                stringOf(payload.Get("item")),
		Material:            stringOf(payload.Get("material")),
		Category:            stringOf(payload.Get("category")),
		DisposalMethod:      stringOf(payload.Get("disposal_method")),
		DisposalSteps:       stringsOf(payload.Get("disposal_steps")),
		RecyclingAvailable:  payload.Get("recycling_available").Bool(),
		LocalNotes:          stringOf(payload.Get("local_notes")),
		LocationInfo:        optionalString(payload.Get("location_info")),
		EnvironmentalImpact: optionalString(payload.Get("environmental_impact")),
	}

	if hazards := payload.Get("hazards"); hazards.Exists() && hazards.Type != gjson.Null {
		rec.Hazards = stringsOf(hazards)
	}

	return rec, nil
}

func optionalString(v gjson.Result) *string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	s := stringOf(v)
	return &s
}

func describe(errs []gojsonschema.ResultError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; ")
}
