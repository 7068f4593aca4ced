package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

var envKeys = []string{
	"ENV_PATH", "SLC_BASE_ADDRESS", "SLC_COMMENTS", "SLC_MAX_STEPS",
	"SLC_STEPS_PER_FRAME", "PORT", "USE_HTTP2", "CORS_ORIGINS",
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 100, cfg.Compiler.BaseAddress)
	assert.True(t, cfg.Compiler.Comments)
	assert.Equal(t, 100000, cfg.Machine.MaxSteps)
	assert.Equal(t, 500, cfg.Machine.StepsPerFrame)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CorsOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestDecode(t *testing.T) {
	cfg := Default()
	err := Decode(strings.NewReader(`
compiler:
  base_address: 16
  comments: false
server:
  cors_origins: ["http://localhost:3000"]
`), cfg)

	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Compiler.BaseAddress)
	assert.False(t, cfg.Compiler.Comments)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CorsOrigins)
	// untouched sections keep their defaults
	assert.Equal(t, 100000, cfg.Machine.MaxSteps)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	err := Decode(strings.NewReader("compiler:\n  base: 3\n"), Default())
	assert.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode(strings.NewReader(""), cfg))
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "slc.yaml", "machine:\n  max_steps: 50\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Machine.MaxSteps)
	assert.Equal(t, 100, cfg.Compiler.BaseAddress)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t, envKeys...)
	t.Setenv("SLC_BASE_ADDRESS", "200")
	t.Setenv("SLC_COMMENTS", "false")
	t.Setenv("SLC_MAX_STEPS", "10")
	t.Setenv("PORT", "9090")
	t.Setenv("USE_HTTP2", "true")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, 200, cfg.Compiler.BaseAddress)
	assert.False(t, cfg.Compiler.Comments)
	assert.Equal(t, 10, cfg.Machine.MaxSteps)
	assert.Equal(t, 500, cfg.Machine.StepsPerFrame)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Server.UseHttp2)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CorsOrigins)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SLC_BASE_ADDRESS", "lots"},
		{"SLC_COMMENTS", "maybe"},
		{"SLC_MAX_STEPS", "1e3"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			clearEnv(t, envKeys...)
			t.Setenv(tc.key, tc.value)
			err := ApplyEnv(Default())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t, envKeys...)
	t.Setenv("ENV_PATH", writeFile(t, ".env", "SLC_MAX_STEPS=42\nPORT=7070\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Machine.MaxSteps)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadMissingDotEnv(t *testing.T) {
	clearEnv(t, envKeys...)
	t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "nope.env"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t, envKeys...)
	t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "nope.env"))
	t.Setenv("SLC_BASE_ADDRESS", "7")
	path := writeFile(t, "slc.yaml", "compiler:\n  base_address: 50\n  comments: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Compiler.BaseAddress, "environment wins over file")
	assert.False(t, cfg.Compiler.Comments, "file wins over defaults")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"base too high", func(c *Config) { c.Compiler.BaseAddress = 256 }, "base address"},
		{"base negative", func(c *Config) { c.Compiler.BaseAddress = -1 }, "base address"},
		{"zero max steps", func(c *Config) { c.Machine.MaxSteps = 0 }, "max steps"},
		{"zero steps per frame", func(c *Config) { c.Machine.StepsPerFrame = 0 }, "steps per frame"},
		{"port not a number", func(c *Config) { c.Server.Port = "http" }, "port must be a number"},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, "port must be between 1 and 65535"},
		{"edge base", func(c *Config) { c.Compiler.BaseAddress = 255 }, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateFillsEmptyOrigins(t *testing.T) {
	cfg := Default()
	cfg.Server.CorsOrigins = nil
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"*"}, cfg.Server.CorsOrigins)
}
