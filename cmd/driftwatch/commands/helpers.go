package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/yairfalse/driftwatch/internal/differ"
	"github.com/yairfalse/driftwatch/internal/fetcher"
	"github.com/yairfalse/driftwatch/internal/logger"
	"github.com/yairfalse/driftwatch/internal/runner"
	"github.com/yairfalse/driftwatch/internal/storage"
)

// buildRunner wires storage, the endpoint client, and the differ from the
// loaded configuration. A non-negative tolerance overrides the configured one.
func buildRunner(toleranceOverride float64) (*runner.Runner, *storage.LocalStore, error) {
	storeConfig := storage.Config{BaseDir: cfg.Storage.BaseDir}
	if cfg.Cache.Enabled {
		storeConfig.CacheTTL = cfg.Cache.TTL
		if storeConfig.CacheTTL <= 0 {
			storeConfig.CacheTTL = storage.DefaultCacheTTL
		}
	}

	store, err := storage.NewLocalStore(storeConfig)
	if err != nil {
		return nil, nil, err
	}

	client := fetcher.New(cfg.Service.BaseURL, cfg.Service.Timeout)

	options := differ.Options{
		Tolerance: cfg.Compare.Tolerance,
		MaxDepth:  cfg.Compare.MaxDepth,
	}
	if toleranceOverride >= 0 {
		options.Tolerance = toleranceOverride
	}

	log := logger.NewLogrus(cfg.Logging.Level)

	return runner.New(store, client, options, log), store, nil
}

// parseParams turns repeated k=v flags into a param map
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

// commandTimeout derives the per-invocation timeout from config, leaving
// headroom over the per-request timeout so slow-but-succeeding calls finish.
func commandTimeout() time.Duration {
	timeout := cfg.Service.Timeout
	if timeout <= 0 {
		timeout = fetcher.DefaultTimeout
	}
	return timeout + 5*time.Second
}
