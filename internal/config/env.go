// # internal/config/env.go
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: STACKLENS_[SECTION]_[KEY].
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.ScanRoot, "STACKLENS_SCAN_ROOT")
	setEnvInt(&cfg.MaxDepth, "STACKLENS_MAX_DEPTH")

	setEnvInt(&cfg.Count.LargestFiles, "STACKLENS_COUNT_LARGEST_FILES")
	setEnvInt(&cfg.Count.Workers, "STACKLENS_COUNT_WORKERS")

	setEnvDuration(&cfg.Watch.Debounce, "STACKLENS_WATCH_DEBOUNCE")

	setEnvBool(&cfg.History.Enabled, "STACKLENS_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "STACKLENS_HISTORY_PATH")

	setEnvBool(&cfg.Observability.Enabled, "STACKLENS_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Addr, "STACKLENS_OBSERVABILITY_ADDR")
	setEnvBool(&cfg.Observability.EnableTracing, "STACKLENS_OBSERVABILITY_ENABLE_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, "STACKLENS_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
