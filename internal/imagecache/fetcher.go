// internal/imagecache/fetcher.go
package imagecache

import (
	"context"
	"errors"
	"fmt"

	httpclient "ecoscan-workers/internal/common/http"
)

// HTTPFetcher asks the image-generation service for a picture of a place.
type HTTPFetcher struct {
	client *httpclient.Client
	url    string
}

func NewHTTPFetcher(client *httpclient.Client, url string) *HTTPFetcher {
	return &HTTPFetcher{client: client, url: url}
}

type imageRequest struct {
	PlaceName string `json:"placeName"`
	PlaceType string `json:"placeType"`
}

type imageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Error    string `json:"error"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context, placeName, placeType string) (string, error) {
	var resp imageResponse
	err := f.client.PostJSON(ctx, f.url, imageRequest{PlaceName: placeName, PlaceType: placeType}, &resp)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && resp.Error != "" {
			return "", fmt.Errorf("%w: %s (status %d)", ErrImageGenerationFailed, resp.Error, statusErr.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}

	if !resp.Success || resp.ImageURL == "" {
		msg := resp.Error
		if msg == "" {
			msg = "no image was generated"
		}
		return "", fmt.Errorf("%w: %s", ErrImageGenerationFailed, msg)
	}
	return resp.ImageURL, nil
}
