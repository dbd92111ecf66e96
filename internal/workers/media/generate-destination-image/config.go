// internal/workers/media/generate-destination-image/config.go
package generatedestinationimage

import (
	"time"

	"ecoscan-workers/internal/common/config"
)

type Config struct {
	// Timeout bounds one job, including the image service call on a miss.
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig, imageCfg config.ImageCacheConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if service := config.GetDuration(imageCfg.Timeout); service > timeout {
		timeout = service
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Config{Timeout: timeout}
}
