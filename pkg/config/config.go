// Package config loads compiler, machine and server settings from YAML files,
// .env files and the process environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPath is loaded by LoadDotEnv when ENV_PATH is unset.
const DefaultEnvPath = ".env"

type Compiler struct {
	BaseAddress int  `yaml:"base_address"`
	Comments    bool `yaml:"comments"`
}

type Machine struct {
	MaxSteps      int `yaml:"max_steps"`
	StepsPerFrame int `yaml:"steps_per_frame"`
}

type Server struct {
	Port        string   `yaml:"port"`
	UseHttp2    bool     `yaml:"use_http2"`
	CorsOrigins []string `yaml:"cors_origins"`
}

type Config struct {
	Compiler Compiler `yaml:"compiler"`
	Machine  Machine  `yaml:"machine"`
	Server   Server   `yaml:"server"`
}

func Default() *Config {
	return &Config{
		Compiler: Compiler{BaseAddress: 100, Comments: true},
		Machine:  Machine{MaxSteps: 100000, StepsPerFrame: 500},
		Server:   Server{Port: "8080", CorsOrigins: []string{"*"}},
	}
}

// Decode reads YAML from r over the values already in cfg. Unknown keys are
// rejected.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadFile returns the defaults overlaid with the YAML file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	if err := Decode(f, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment. The path comes
// from ENV_PATH, falling back to defaultPath. A missing file is not an error.
func LoadDotEnv(defaultPath string) {
	envPath := os.Getenv("ENV_PATH")
	if envPath == "" {
		envPath = defaultPath
	}
	if err := godotenv.Load(envPath); err != nil {
		slog.Debug("Skipping .env ...", "path", envPath, "error", err)
	}
}

// ApplyEnv overrides cfg with any of SLC_BASE_ADDRESS, SLC_COMMENTS,
// SLC_MAX_STEPS, SLC_STEPS_PER_FRAME, PORT, USE_HTTP2 and CORS_ORIGINS.
func ApplyEnv(cfg *Config) error {
	if err := envInt("SLC_BASE_ADDRESS", &cfg.Compiler.BaseAddress); err != nil {
		return err
	}
	if err := envBool("SLC_COMMENTS", &cfg.Compiler.Comments); err != nil {
		return err
	}
	if err := envInt("SLC_MAX_STEPS", &cfg.Machine.MaxSteps); err != nil {
		return err
	}
	if err := envInt("SLC_STEPS_PER_FRAME", &cfg.Machine.StepsPerFrame); err != nil {
		return err
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if v := os.Getenv("USE_HTTP2"); v != "" {
		cfg.Server.UseHttp2 = v == "true"
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CorsOrigins = splitOrigins(v)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when empty), then .env and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	LoadDotEnv(DefaultEnvPath)
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Compiler.BaseAddress < 0 || c.Compiler.BaseAddress > 255 {
		return fmt.Errorf("invalid base address %d: must be between 0 and 255", c.Compiler.BaseAddress)
	}
	if c.Machine.MaxSteps <= 0 {
		return errors.New("max steps must be positive")
	}
	if c.Machine.StepsPerFrame <= 0 {
		return errors.New("steps per frame must be positive")
	}
	if err := validatePort(c.Server.Port); err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if len(c.Server.CorsOrigins) == 0 {
		c.Server.CorsOrigins = []string{"*"}
	}
	return nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return errors.New("port must be a number")
	}
	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func splitOrigins(v string) []string {
	var origins []string
	for _, origin := range strings.Split(v, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not a number", key, v)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	*dst = b
	return nil
}
