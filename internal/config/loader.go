package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names and prefixes.
const (
	EnvPrefix     = "COURSES_"
	EnvConfigFile = "COURSES_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COURSES_CONFIG is set
//  3. env (prefix COURSES_; a double underscore descends, e.g.
//     COURSES_IDENTITY__STUDENT_ID -> identity.student_id)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		if key == EnvConfigFile {
			return "", nil
		}
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		switch key {
		case "allowed_origins", "metrics.buckets_ms":
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot default away.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.APIPrefix, "/"):
		return fmt.Errorf("%w: api_prefix must start with /", ErrInvalidConfig)
	case len(c.APIPrefix) > 1 && strings.HasSuffix(c.APIPrefix, "/"):
		return fmt.Errorf("%w: api_prefix must not end with /", ErrInvalidConfig)
	case c.ReadTimeoutMS < 0 || c.WriteTimeoutMS < 0 || c.ShutdownTimeoutMS < 0:
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.Metrics.RefreshIntervalMS <= 0:
		return fmt.Errorf("%w: metrics.refresh_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
