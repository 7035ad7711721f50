// Package config resolves CLI defaults from the environment and an optional
// .env file.
//
// Precedence, highest first: command-line flags (applied by the CLI), process
// environment, .env file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDB     = "STRATASIM_DB"
	EnvFormat = "STRATASIM_FORMAT"
	EnvSeed   = "STRATASIM_SEED"
)

// DefaultEnvFile is read when Load is called without explicit files.
const DefaultEnvFile = ".env"

// Config holds resolved defaults.
type Config struct {
	DB     string // journal path; empty disables journaling
	Format string // "text" | "json"

	// Seed overrides scenario seeds when set.
	Seed *uint64
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{Format: "text"}
}

// Load resolves the configuration. With no files it reads DefaultEnvFile if
// present; explicitly named files must exist.
func Load(files ...string) (Config, error) {
	fileEnv := map[string]string{}
	if len(files) == 0 {
		env, err := godotenv.Read(DefaultEnvFile)
		switch {
		case err == nil:
			fileEnv = env
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read %s: %w", DefaultEnvFile, err)
		}
	} else {
		env, err := godotenv.Read(files...)
		if err != nil {
			return Config{}, fmt.Errorf("read env files: %w", err)
		}
		fileEnv = env
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

// FromLookup builds a Config from a key lookup such as os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvDB); ok {
		cfg.DB = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		if v != "text" && v != "json" {
			return Config{}, fmt.Errorf("%s: invalid format %q", EnvFormat, v)
		}
		cfg.Format = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}
