package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Config holds the host settings read from .scribe.yaml.
type Config struct {
	Addr         string
	Debounce     time.Duration
	ScrollSettle time.Duration
	VisibleLines int
	Theme        string
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":8777",
		Debounce:     75 * time.Millisecond,
		ScrollSettle: 30 * time.Millisecond,
		VisibleLines: 24,
		Theme:        "github",
	}
}

// LoadConfig reads the config file at path. A missing file yields defaults.
// Values are coerced loosely; anything unusable keeps its default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if v, ok := raw["addr"]; ok {
		if s := cast.ToString(v); s != "" {
			cfg.Addr = s
		}
	}
	if v, ok := raw["debounce_ms"]; ok {
		if ms := cast.ToInt(v); ms > 0 {
			cfg.Debounce = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := raw["settle_ms"]; ok {
		if ms := cast.ToInt(v); ms >= 0 {
			cfg.ScrollSettle = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := raw["visible_lines"]; ok {
		if n := cast.ToInt(v); n > 0 {
			cfg.VisibleLines = n
		}
	}
	if v, ok := raw["theme"]; ok {
		if s := cast.ToString(v); s != "" {
			cfg.Theme = s
		}
	}
	return cfg, nil
}
