// internal/workers/extraction/extract-disposal/handler.go
package extractdisposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	TaskType = "extract-disposal"
)

var (
	ErrMessageTextRequired = errors.New("EXTRACTION_INPUT_INVALID")
	ErrPointsLedgerFailed  = errors.New("POINTS_LEDGER_FAILED")
)

// Ledger books points for a scanned item.
type Ledger interface {
	AwardForDisposal(ctx context.Context, userID string, rec *models.DisposalRecord) (*models.PointsState, error)
}

type Handler struct {
	config       *Config
	ledger       Ledger
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
}

// NewHandler builds the handler. ledger may be nil when no ledger database is
// configured; records are then extracted without awarding points.
func NewHandler(config *Config, ledger Ledger, obs *observability.Observability, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		ledger:       ledger,
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
		h.errorHandler.HandleJobError(ctx, client, job, h.toStandardError(&input, err))
		return
	}

	_ = camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) toStandardError(input *Input, err error) error {
	switch {
	case errors.Is(err, ErrMessageTextRequired):
		return apperrors.NewExtractionInputInvalidError(err.Error())
	case errors.Is(err, ErrPointsLedgerFailed):
		return apperrors.NewPointsLedgerFailedError(input.UserID, err)
	default:
		return err
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.MessageText == nil {
		return nil, ErrMessageTextRequired
	}
	raw := *input.MessageText

	start := time.Now()
	rec, outcome := extraction.DisposalWithOutcome(raw)
	metrics.RecordExtraction(string(extraction.VariantDisposal), string(outcome))
	h.obs.RecordExtraction(ctx, string(extraction.VariantDisposal), string(outcome), len(raw), time.Since(start))

	output := &Output{
		Found:       rec != nil,
		Record:      rec,
		DisplayText: extraction.StripEmbeddedJSON(raw),
	}
	if rec == nil {
		h.logger.Info("no disposal record in message", map[string]interface{}{
			"outcome": string(outcome),
		})
		return output, nil
	}

	if input.UserID == "" || h.ledger == nil || !h.config.AwardPoints {
		return output, nil
	}

	state, err := h.ledger.AwardForDisposal(ctx, input.UserID, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPointsLedgerFailed, err)
	}
	metrics.PointsAwarded.Add(float64(state.Awarded))
	output.Points = state

	h.logger.Info("disposal points awarded", map[string]interface{}{
		"userId":  input.UserID,
		"item":    rec.Item,
		"awarded": state.Awarded,
		"balance": state.Balance,
	})
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
