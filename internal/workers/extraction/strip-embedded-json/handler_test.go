// internal/workers/extraction/strip-embedded-json/handler_test.go
package stripembeddedjson

import (
	"context"
	"testing"

	"ecoscan-workers/internal/common/config"
	"ecoscan-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"fenced payload", "Here are some ideas:\n```json\n{\"spots\":[]}\n```", "Here are some ideas:"},
		{"raw payload", `Try these {"spots":[{"name":"A"}]} and enjoy`, "Try these  and enjoy"},
		{"prose only", "  Just text \n", "Just text"},
		{"unfinished payload kept", "Loading {\"spots\":[", "Loading {\"spots\":["},
		{"empty", "", ""},
	}

	h := NewHandler(LoadConfig(config.WorkerConfig{}), logger.NewTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.message
			output, err := h.Execute(context.Background(), &Input{MessageText: &msg})
			require.NoError(t, err)
			assert.Equal(t, tt.want, output.DisplayText)
		})
	}
}

func TestHandler_Execute_MissingMessageText(t *testing.T) {
	h := NewHandler(LoadConfig(config.WorkerConfig{}), logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrMessageTextRequired)
	assert.Nil(t, output)
}
