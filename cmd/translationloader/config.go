package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the settings shared by all commands.
// Values are read from the config file, then the environment, then flags.
type Config struct {
	Dir           string `toml:"dir" env:"TRANSLATIONLOADER_DIR"`
	DefaultsDir   string `toml:"defaults_dir" env:"TRANSLATIONLOADER_DEFAULTS_DIR"`
	Version       string `toml:"version" env:"TRANSLATIONLOADER_VERSION"`
	DefaultLocale string `toml:"default_locale" env:"TRANSLATIONLOADER_DEFAULT_LOCALE"`
	Verbose       bool   `toml:"verbose" env:"TRANSLATIONLOADER_VERBOSE"`
}

// loadConfig reads the optional config file and .env file and applies the environment.
// A missing config file is not an error unless it was set explicitly.
func loadConfig(path string, explicit bool, envFile string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || explicit {
				return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: unable to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// .env is optional when the variables are provided by the environment.
		return nil, fmt.Errorf("config: unable to load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}

	return cfg, nil
}

// exitf writes the message to stderr and exits with code 1.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
