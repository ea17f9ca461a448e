package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultEmailDomain is appended to netids to form Bridge uids.
	DefaultEmailDomain = "uw.edu"
	// DefaultPageSize is the limit requested per listing page.
	DefaultPageSize = 1000
)

var (
	ErrReadingConfig = errors.New("failed to read config file")
	ErrParsingConfig = errors.New("failed to parse config file")
	ErrInvalidConfig = errors.New("invalid config")
)

type Params struct {
	EmailDomain string `yaml:"emailDomain"`
	PageSize    int    `yaml:"pageSize" validate:"omitempty,gt=0"`
}

type Config struct {
	Host   string              `yaml:"host" validate:"required,url"`
	Auth   commoncfg.SecretRef `yaml:"auth"`
	Params Params              `yaml:"params"`
}

// Load reads, parses and validates the YAML config at path, filling in
// defaults for omitted params.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadingConfig, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}

	cfg.applyDefaults()

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Params.EmailDomain == "" {
		c.Params.EmailDomain = DefaultEmailDomain
	}

	if c.Params.PageSize == 0 {
		c.Params.PageSize = DefaultPageSize
	}
}
