package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwtools/go-bridge/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		expectError   bool
		errorContains string
		check         func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "Full config",
			content: `host: https://bridge.example.com
auth:
  type: basic
  basic:
    username:
      source: embedded
      value: test-key
    password:
      source: embedded
      value: test-secret
params:
  emailDomain: example.edu
  pageSize: 50
`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "https://bridge.example.com", cfg.Host)
				assert.Equal(t, "example.edu", cfg.Params.EmailDomain)
				assert.Equal(t, 50, cfg.Params.PageSize)
			},
		},
		{
			name: "Defaults applied",
			content: `host: https://bridge.example.com
auth:
  type: basic
`,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.DefaultEmailDomain, cfg.Params.EmailDomain)
				assert.Equal(t, config.DefaultPageSize, cfg.Params.PageSize)
			},
		},
		{
			name:          "Missing host",
			content:       "params:\n  pageSize: 10\n",
			expectError:   true,
			errorContains: "invalid config",
		},
		{
			name:          "Negative page size",
			content:       "host: https://bridge.example.com\nparams:\n  pageSize: -1\n",
			expectError:   true,
			errorContains: "invalid config",
		},
		{
			name:          "Not YAML",
			content:       "{{nope",
			expectError:   true,
			errorContains: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, tt.content))

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, config.ErrReadingConfig)
	assert.Nil(t, cfg)
}
