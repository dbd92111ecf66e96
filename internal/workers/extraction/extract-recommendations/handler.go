// internal/workers/extraction/extract-recommendations/handler.go
package extractrecommendations

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ecoscan-workers/internal/common/camunda"
	apperrors "ecoscan-workers/internal/common/errors"
	"ecoscan-workers/internal/common/logger"
	"ecoscan-workers/internal/common/metrics"
	"ecoscan-workers/internal/common/observability"
	"ecoscan-workers/internal/extraction"
	"ecoscan-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "extract-recommendations"
)

var (
	ErrMessageTextRequired = errors.New("EXTRACTION_INPUT_INVALID")
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
		obs:          obs,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewParseError(err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewExtractionInputInvalidError(err.Error()))
		return
	}

	_ = camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.MessageText == nil {
		return nil, ErrMessageTextRequired
	}
	raw := *input.MessageText

	start := time.Now()
	set, outcome := extraction.RecommendationsWithOutcome(raw)
	metrics.RecordExtraction(string(extraction.VariantRecommendations), string(outcome))
	h.obs.RecordExtraction(ctx, string(extraction.VariantRecommendations), string(outcome), len(raw), time.Since(start))

	output := &Output{
		Recommendations: []models.Recommendation{},
		DisplayText:     extraction.StripEmbeddedJSON(raw),
	}
	if set == nil {
		h.logger.Info("no recommendations in message", map[string]interface{}{
			"outcome": string(outcome),
			"length":  len(raw),
		})
		return output, nil
	}

	output.Found = true
	output.IntroText = set.IntroText
	output.Recommendations = set.Recommendations

	h.logger.Info("recommendations extracted", map[string]interface{}{
		"count": len(set.Recommendations),
	})
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
