package extraction

import (
	"strings"
	"testing"

	"ecoscan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSpots = "Here are 2 spots for you:\n```json\n" +
	`{"recommendations":[{"name":"Karura Forest","type":"Forest"},{"name":"Uhuru Park"}]}` +
	"\n```"

const bottle = `{"item":"Plastic bottle","material":"PET","category":"Plastic","disposal_method":"Recycle","disposal_steps":["Rinse","Place in bin"],"recycling_available":true,"local_notes":"Take to Nairobi collection point"}`

func TestExtractRecommendations_TwoSpots(t *testing.T) {
	set := ExtractRecommendations(twoSpots)
	require.NotNil(t, set)

	assert.Equal(t, "Here are 2 spots for you:", set.IntroText)
	require.Len(t, set.Recommendations, 2)
	assert.Equal(t, "Karura Forest", set.Recommendations[0].Name)
	assert.Equal(t, "Forest", set.Recommendations[0].Type)
	assert.Equal(t, "Uhuru Park", set.Recommendations[1].Name)
	assert.Equal(t, models.DefaultRecommendationType, set.Recommendations[1].Type)
	assert.Equal(t, models.DefaultDifficulty, set.Recommendations[1].Difficulty)
}

func TestExtractRecommendations_ParksKey(t *testing.T) {
	raw := "Try this park:\n```json\n{\"parks\":[{\"name\":\"City Park\",\"location\":\"Parklands\"}]}\n```"

	set := ExtractRecommendations(raw)
	require.NotNil(t, set)
	require.Len(t, set.Recommendations, 1)

	rec := set.Recommendations[0]
	assert.Equal(t, "City Park", rec.Name)
	assert.Equal(t, "Parklands", rec.Distance)
	assert.Equal(t, "Outdoor Space", rec.Type)
	assert.Equal(t, "Easy", rec.Difficulty)
	assert.Equal(t, []string{}, rec.Transport)
	assert.Equal(t, []string{}, rec.WhatToCarry)
	assert.Equal(t, []string{}, rec.SafetyNotes)
}

func TestExtractRecommendations_Nil(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "Let me look up some places near you..."},
		{"incomplete stream", "Here are some spots:\n```json\n{\"recommendations\":[{\"name\":\"Karura Forest\""},
		{"parse failure", "Here:\n```json\n{\"recommendations\":[{\"name\":Karura}]}\n```"},
		{"disposal payload", bottle},
		{"unknown list key", `{"results":[{"name":"A"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() { ExtractRecommendations(tt.raw) })
			assert.Nil(t, ExtractRecommendations(tt.raw))
		})
	}
}

func TestExtractRecommendations_Idempotent(t *testing.T) {
	assert.Equal(t, ExtractRecommendations(twoSpots), ExtractRecommendations(twoSpots))
}

func TestExtractRecommendations_FenceRawEquivalence(t *testing.T) {
	payload := `{"spots":[{"name":"Ngong Hills","why":"Ridge views {windy}","transport":["Matatu 111"]}]}`

	fenced := ExtractRecommendations("Two ideas:\n```json\n" + payload + "\n```")
	raw := ExtractRecommendations("Two ideas: " + payload)

	require.NotNil(t, fenced)
	require.NotNil(t, raw)
	assert.Equal(t, fenced.Recommendations, raw.Recommendations)
	assert.Equal(t, fenced.IntroText, raw.IntroText)
}

func TestExtractRecommendations_MonotonicStability(t *testing.T) {
	first := ExtractRecommendations(twoSpots)
	require.NotNil(t, first)

	for _, tail := range []string{"\n", "\nEnjoy", "\nEnjoy your walk! {", "\n```json\n{\"other\":", "\n```", "\n```json", "\n```\n"} {
		next := ExtractRecommendations(twoSpots + tail)
		require.NotNil(t, next, "tail %q", tail)
		assert.Equal(t, first, next, "tail %q", tail)
	}
}

func TestExtractRecommendations_RawPayloadStableUnderFenceSuffix(t *testing.T) {
	raw := `Here you go: {"recommendations":[{"name":"Karura Forest"}]}`
	first := ExtractRecommendations(raw)
	require.NotNil(t, first)

	for _, tail := range []string{"\n```", "\n```json", "\n```\n"} {
		next, outcome := RecommendationsWithOutcome(raw + tail)
		require.NotNil(t, next, "tail %q", tail)
		assert.Equal(t, first, next, "tail %q", tail)
		assert.Equal(t, OutcomeOK, outcome, "tail %q", tail)
		assert.NotContains(t, StripEmbeddedJSON(raw+tail), "Karura", "tail %q", tail)
	}
}

func TestExtractRecommendations_StreamingNeverPanics(t *testing.T) {
	for i := 0; i <= len(twoSpots); i++ {
		prefix := twoSpots[:i]
		assert.NotPanics(t, func() {
			ExtractRecommendations(prefix)
			ExtractDisposalRecord(prefix)
			StripEmbeddedJSON(prefix)
		})
	}
}

func TestExtractDisposalRecord(t *testing.T) {
	rec := ExtractDisposalRecord("Here is how to dispose of it:\n```json\n" + bottle + "\n```")
	require.NotNil(t, rec)

	assert.Equal(t, "Plastic bottle", rec.Item)
	assert.Equal(t, "PET", rec.Material)
	assert.Equal(t, "Plastic", rec.Category)
	assert.Equal(t, "Recycle", rec.DisposalMethod)
	assert.Equal(t, []string{"Rinse", "Place in bin"}, rec.DisposalSteps)
	assert.True(t, rec.RecyclingAvailable)
	assert.Equal(t, "Take to Nairobi collection point", rec.LocalNotes)
	assert.Nil(t, rec.Hazards)

	assert.Equal(t, rec, ExtractDisposalRecord(bottle))
}

func TestExtractDisposalRecord_Nil(t *testing.T) {
	assert.Nil(t, ExtractDisposalRecord("Scanning your item..."))
	assert.Nil(t, ExtractDisposalRecord(`{"item":"Can","material":`))
	assert.Nil(t, ExtractDisposalRecord(`{"material":"PET"}`))
	assert.Nil(t, ExtractDisposalRecord(twoSpots))
}

func TestStripEmbeddedJSON(t *testing.T) {
	assert.Equal(t, "Here are some ideas:", StripEmbeddedJSON("Here are some ideas:\n```json\n{...}\n```"))
	assert.Equal(t, "Here are 2 spots for you:", StripEmbeddedJSON(twoSpots))
	assert.Equal(t, "plain", StripEmbeddedJSON("  plain \n"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		variant Variant
		want    Outcome
	}{
		{"recommendations ok", twoSpots, VariantRecommendations, OutcomeOK},
		{"disposal ok", bottle, VariantDisposal, OutcomeOK},
		{"no match", "Just prose", VariantRecommendations, OutcomeNoMatch},
		{"incomplete raw", `Intro {"recommendations":[`, VariantRecommendations, OutcomeIncomplete},
		{"incomplete fence", "Intro\n```json\n", VariantDisposal, OutcomeIncomplete},
		{"parse failure", `{"item": Can}`, VariantDisposal, OutcomeParseFailure},
		{"shape mismatch", bottle, VariantRecommendations, OutcomeShapeMismatch},
		{"disposal shape mismatch", twoSpots, VariantDisposal, OutcomeShapeMismatch},
		{"unknown variant", bottle, Variant("other"), OutcomeShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw, tt.variant))
		})
	}
}

func TestClassify_AgreesWithEntryPoints(t *testing.T) {
	inputs := []string{twoSpots, bottle, "", "prose", `{"x":`, strings.Repeat("{", 10)}
	for _, raw := range inputs {
		assert.Equal(t, ExtractRecommendations(raw) != nil, Classify(raw, VariantRecommendations) == OutcomeOK, raw)
		assert.Equal(t, ExtractDisposalRecord(raw) != nil, Classify(raw, VariantDisposal) == OutcomeOK, raw)
	}
}

func TestWithOutcome(t *testing.T) {
	set, outcome := RecommendationsWithOutcome(twoSpots)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, ExtractRecommendations(twoSpots), set)

	rec, outcome := DisposalWithOutcome(twoSpots)
	assert.Nil(t, rec)
	assert.Equal(t, OutcomeShapeMismatch, outcome)

	rec, outcome = DisposalWithOutcome("```json\n" + bottle[:20])
	assert.Nil(t, rec)
	assert.Equal(t, OutcomeIncomplete, outcome)
}

func BenchmarkExtractRecommendations(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ExtractRecommendations(twoSpots)
	}
}
