// internal/workers/extraction/extract-disposal/config.go
package extractdisposal

import (
	"time"

	"ecoscan-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// AwardPoints turns off ledger writes when false, e.g. for replays.
	AwardPoints bool
}

func LoadConfig(wcfg config.WorkerConfig, ledgerEnabled bool) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout:     timeout,
		AwardPoints: ledgerEnabled,
	}
}
