// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanRoot string `toml:"scan_root"`
	MaxDepth int    `toml:"max_depth"`

	Ignore        Ignore        `toml:"ignore"`
	Count         Count         `toml:"count"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Ignore struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
	// Globs are matched against project-relative slash paths.
	Globs []string `toml:"globs"`
}

type Count struct {
	Extensions       []string `toml:"extensions"`
	MinifiedSuffixes []string `toml:"minified_suffixes"`
	LargestFiles     int      `toml:"largest_files"`
	Workers          int      `toml:"workers"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Addr          string `toml:"addr"`
	EnableTracing bool   `toml:"enable_tracing"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
}

// DefaultIgnoreDirs lists the dependency, output and cache directories no
// walk ever descends into. Hidden directories are excluded separately.
func DefaultIgnoreDirs() []string {
	return []string{
		"node_modules", "bower_components", "vendor",
		"dist", "build", "out", "coverage", "tmp",
	}
}

// DefaultIgnoreFiles lists the file basenames counting skips.
func DefaultIgnoreFiles() []string {
	return []string{
		"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "bun.lockb",
	}
}

// DefaultExtensions lists the recognized source extensions.
func DefaultExtensions() []string {
	return []string{
		".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs",
		".vue", ".svelte",
		".css", ".scss", ".sass", ".less",
		".html", ".htm", ".json", ".md",
	}
}

// DefaultMinifiedSuffixes lists generated-artifact suffixes counting skips.
func DefaultMinifiedSuffixes() []string {
	return []string{".min.js", ".min.css", ".bundle.js"}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

// Default returns a usable configuration without any config file present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.ScanRoot == "" {
		cfg.ScanRoot = "."
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 3
	}
	if len(cfg.Ignore.Dirs) == 0 {
		cfg.Ignore.Dirs = DefaultIgnoreDirs()
	}
	if len(cfg.Ignore.Files) == 0 {
		cfg.Ignore.Files = DefaultIgnoreFiles()
	}
	if len(cfg.Count.Extensions) == 0 {
		cfg.Count.Extensions = DefaultExtensions()
	}
	if len(cfg.Count.MinifiedSuffixes) == 0 {
		cfg.Count.MinifiedSuffixes = DefaultMinifiedSuffixes()
	}
	if cfg.Count.LargestFiles == 0 {
		cfg.Count.LargestFiles = 5
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath()
	}
	if cfg.Observability.Addr == "" {
		cfg.Observability.Addr = "127.0.0.1:9190"
	}
}

func validate(cfg *Config) error {
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.Count.LargestFiles < 0 {
		return fmt.Errorf("count.largest_files must not be negative, got %d", cfg.Count.LargestFiles)
	}
	if cfg.Count.Workers < 0 {
		return fmt.Errorf("count.workers must not be negative, got %d", cfg.Count.Workers)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	if cfg.Observability.Enabled && cfg.Observability.Addr == "" {
		return fmt.Errorf("observability.addr is required when observability is enabled")
	}
	return nil
}
