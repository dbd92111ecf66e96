// Package extraction turns chat-model replies into structured records.
//
// The entry points are pure and stateless. They can be called on every
// snapshot of a streaming reply and return nil until a complete, well-shaped
// payload is present.
package extraction

import (
	"errors"

	"ecoscan-workers/internal/extraction/locator"
	"ecoscan-workers/internal/extraction/normalizer"
	"ecoscan-workers/internal/models"

	"github.com/tidwall/gjson"
)

// Variant selects the record shape a reply is expected to carry.
type Variant string

const (
	VariantRecommendations Variant = "recommendations"
	VariantDisposal        Variant = "disposal"
)

// Outcome names the bucket an extraction attempt ended in.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeNoMatch       Outcome = "no_match"
	OutcomeIncomplete    Outcome = "incomplete"
	OutcomeParseFailure  Outcome = "parse_failure"
	OutcomeShapeMismatch Outcome = "shape_mismatch"
)

// RecommendationSet is a normalized recommendations reply.
type RecommendationSet struct {
	IntroText       string                  `json:"introText"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// ExtractRecommendations returns the intro prose and recommendations embedded
// in raw, or nil when none can be extracted yet.
func ExtractRecommendations(raw string) *RecommendationSet {
	set, _ := extractRecommendations(raw)
	return set
}

// ExtractDisposalRecord returns the disposal record embedded in raw, or nil.
func ExtractDisposalRecord(raw string) *models.DisposalRecord {
	rec, _ := extractDisposal(raw)
	return rec
}

// StripEmbeddedJSON removes the embedded payload from raw and returns the
// remaining prose, trimmed.
func StripEmbeddedJSON(raw string) string {
	return locator.Strip(raw)
}

// RecommendationsWithOutcome is ExtractRecommendations that also reports the
// outcome bucket.
func RecommendationsWithOutcome(raw string) (*RecommendationSet, Outcome) {
	set, err := extractRecommendations(raw)
	return set, outcomeOf(err)
}

// DisposalWithOutcome is ExtractDisposalRecord that also reports the outcome
// bucket.
func DisposalWithOutcome(raw string) (*models.DisposalRecord, Outcome) {
	rec, err := extractDisposal(raw)
	return rec, outcomeOf(err)
}

// Classify reports which outcome extracting the given variant from raw ends
// in. Unknown variants classify as a shape mismatch.
func Classify(raw string, variant Variant) Outcome {
	var err error
	switch variant {
	case VariantRecommendations:
		_, err = extractRecommendations(raw)
	case VariantDisposal:
		_, err = extractDisposal(raw)
	default:
		return OutcomeShapeMismatch
	}
	return outcomeOf(err)
}

var (
	errNoMatch      = errors.New("NO_MATCH")
	errIncomplete   = errors.New("INCOMPLETE")
	errParseFailure = errors.New("PARSE_FAILURE")
)

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, errNoMatch):
		return OutcomeNoMatch
	case errors.Is(err, errIncomplete):
		return OutcomeIncomplete
	case errors.Is(err, errParseFailure):
		return OutcomeParseFailure
	default:
		return OutcomeShapeMismatch
	}
}

// payload locates and parses the embedded object.
func payload(raw string) (locator.Block, gjson.Result, error) {
	block := locator.Locate(raw)
	switch {
	case block.Pending:
		return block, gjson.Result{}, errIncomplete
	case !block.Found:
		return block, gjson.Result{}, errNoMatch
	}
	if !gjson.Valid(block.JSONText) {
		return block, gjson.Result{}, errParseFailure
	}
	return block, gjson.Parse(block.JSONText), nil
}

func extractRecommendations(raw string) (set *RecommendationSet, err error) {
	defer func() {
		if recover() != nil {
			set, err = nil, errParseFailure
		}
	}()

	block, doc, err := payload(raw)
	if err != nil {
		return nil, err
	}
	recs, err := normalizer.Recommendations(doc)
	if err != nil {
		return nil, err
	}
	return &RecommendationSet{IntroText: block.IntroText, Recommendations: recs}, nil
}

func extractDisposal(raw string) (rec *models.DisposalRecord, err error) {
	defer func() {
		if recover() != nil {
			rec, err = nil, errParseFailure
		}
	}()

	_, doc, err := payload(raw)
	if err != nil {
		return nil, err
	}
	return normalizer.Disposal(doc)
}
