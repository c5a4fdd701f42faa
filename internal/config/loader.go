package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. Nested keys are separated by a double
// underscore, e.g. MHSURVEY_SOURCE__PATH or MHSURVEY_LOGGING__LEVEL.
const EnvPrefix = "MHSURVEY_"

// EnvConfigPath names the variable consulted when no config path is given.
const EnvConfigPath = EnvPrefix + "CONFIG"

// ErrLoadConfig wraps every failure to read or decode configuration.
var ErrLoadConfig = errors.New("load config failed")

// LoadConfig builds a Config by layering defaults, an optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. Default()
//  2. file at path, or at $MHSURVEY_CONFIG when path is empty
//  3. env (prefix MHSURVEY_)
//
// The result is validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated is LoadConfig without the final Validate, for callers that fill in
// fields from flags first.
func LoadUnvalidated(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)

		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: failed to read environment: %w", ErrLoadConfig, err)
	}

	cfg := Default()

	// Lists from the file replace the defaults instead of merging by index.
	if k.Exists("output.formats") {
		cfg.Output.Formats = nil
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config: %w", ErrLoadConfig, err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file at path when one exists. Variables already
// set in the environment win. It reports whether a file was loaded.
func LoadDotEnv(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("%w: failed to load %s: %w", ErrLoadConfig, path, err)
	}

	return true, nil
}
