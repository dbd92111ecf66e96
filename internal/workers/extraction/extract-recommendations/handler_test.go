// internal/workers/extraction/extract-recommendations/handler_test.go
package extractrecommendations

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ecoscan-workers/internal/common/config"
	"ecoscan-workers/internal/common/logger"
	"ecoscan-workers/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{Timeout: 5000}), nil, logger.NewTestLogger(t))
}

func strPtr(s string) *string { return &s }

func TestHandler_Execute_Found(t *testing.T) {
	h := newTestHandler(t)
	msg := "Here are 2 spots for you:\n```json\n" +
		`{"recommendations":[{"name":"Karura Forest","type":"Forest"},{"name":"Uhuru Park"}]}` +
		"\n```\nHave fun!"

	output, err := h.Execute(context.Background(), &Input{MessageText: &msg})
	require.NoError(t, err)

	assert.True(t, output.Found)
	assert.Equal(t, "Here are 2 spots for you:", output.IntroText)
	require.Len(t, output.Recommendations, 2)
	assert.Equal(t, "Karura Forest", output.Recommendations[0].Name)
	assert.Equal(t, "Outdoor Space", output.Recommendations[1].Type)
	assert.Equal(t, "Here are 2 spots for you:\n\nHave fun!", output.DisplayText)
}

func TestHandler_Execute_NotFound(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		displayText string
	}{
		{"prose only", "  Looking for places near you...  ", "Looking for places near you..."},
		{"stream in progress", "Here are some spots:\n```json\n{\"recommendations\":[", "Here are some spots:\n```json\n{\"recommendations\":["},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			output, err := h.Execute(context.Background(), &Input{MessageText: strPtr(tt.message)})
			require.NoError(t, err)

			assert.False(t, output.Found)
			assert.Empty(t, output.IntroText)
			assert.NotNil(t, output.Recommendations)
			assert.Empty(t, output.Recommendations)
			assert.Equal(t, tt.displayText, output.DisplayText)
		})
	}
}

func TestHandler_Execute_MissingMessageText(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrMessageTextRequired)
	assert.Nil(t, output)
}

func TestHandler_Execute_RecordsOutcome(t *testing.T) {
	h := newTestHandler(t)
	counter := metrics.ExtractionOutcomes.WithLabelValues("recommendations", "parse_failure")
	before := testutil.ToFloat64(counter)

	_, err := h.Execute(context.Background(), &Input{MessageText: strPtr(`{"recommendations":[{"name":Karura}]}`)})
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestOutput_JSONShape(t *testing.T) {
	h := newTestHandler(t)
	output, err := h.Execute(context.Background(), &Input{MessageText: strPtr("nothing here")})
	require.NoError(t, err)

	encoded, err := json.Marshal(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"found":false,"introText":"","recommendations":[],"displayText":"nothing here"}`, string(encoded))
}

func TestInput_MessageTextDecoding(t *testing.T) {
	var missing, empty Input
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	require.NoError(t, json.Unmarshal([]byte(`{"messageText":""}`), &empty))

	assert.Nil(t, missing.MessageText)
	require.NotNil(t, empty.MessageText)
	assert.Equal(t, "", *empty.MessageText)
}

func TestLoadConfig_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, LoadConfig(config.WorkerConfig{Timeout: 5000}).Timeout)
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
}
