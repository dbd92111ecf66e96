// internal/workers/media/generate-destination-image/handler.go
package generatedestinationimage

import (
	"context"
	"encoding/json"
	"errors"

	"ecoscan-workers/internal/common/camunda"
	apperrors "ecoscan-workers/internal/common/errors"
	"ecoscan-workers/internal/common/logger"
	"ecoscan-workers/internal/common/metrics"
	"ecoscan-workers/internal/imagecache"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-destination-image"
)

// ImageCache resolves image URLs for places.
type ImageCache interface {
	Get(ctx context.Context, placeName, placeType string) (string, error)
	Invalidate(ctx context.Context, placeName, placeType string) error
}

type Handler struct {
	config       *Config
	cache        ImageCache
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, cache ImageCache, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		cache:        cache,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
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
		h.errorHandler.HandleJobError(ctx, client, job, toStandardError(ctx, &input, err))
		return
	}

	_ = camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func toStandardError(ctx context.Context, input *Input, err error) error {
	switch {
	case errors.Is(err, imagecache.ErrPlaceNameRequired):
		return apperrors.NewPlaceNameRequiredError()
	case errors.Is(err, imagecache.ErrCacheFailed):
		return apperrors.NewImageCacheFailedError(err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewImageGenerationTimeoutError(input.PlaceName)
	case errors.Is(err, imagecache.ErrImageGenerationFailed):
		return apperrors.NewImageGenerationFailedError(input.PlaceName, err)
	default:
		return err
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.PlaceName == "" {
		return nil, imagecache.ErrPlaceNameRequired
	}

	if input.Refresh {
		if err := h.cache.Invalidate(ctx, input.PlaceName, input.PlaceType); err != nil {
			metrics.ImageCacheRequests.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	url, err := h.cache.Get(ctx, input.PlaceName, input.PlaceType)
	if err != nil {
		metrics.ImageCacheRequests.WithLabelValues("error").Inc()
		h.logger.Warn("destination image unavailable", map[string]interface{}{
			"placeName": input.PlaceName,
			"placeType": input.PlaceType,
			"error":     err.Error(),
		})
		return nil, err
	}
	metrics.ImageCacheRequests.WithLabelValues("resolved").Inc()

	h.logger.Info("destination image resolved", map[string]interface{}{
		"placeName": input.PlaceName,
		"refreshed": input.Refresh,
	})
	return &Output{ImageURL: url}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
