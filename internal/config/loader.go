package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces repochat environment variables.
	envPrefix = "REPOCHAT_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load loads configuration from a YAML file, then overrides with
// environment variables, then applies defaults and validates.
//
// Precedence (highest to lowest):
//  1. Environment variables (REPOCHAT_EMBEDDINGS_API_KEY, REPOCHAT_STORE_PROVIDER, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// configPath may be empty, in which case only environment variables and
// defaults apply. A missing file at a non-empty configPath is not an error;
// an unreadable or oversized file is.
//
// Environment variables map to config keys by stripping the REPOCHAT_
// prefix, lowercasing, and treating the first underscore as the section
// separator:
//
//	REPOCHAT_INGEST_MAX_FILE_SIZE -> ingest.max_file_size
//	REPOCHAT_LLM_API_KEY          -> llm.api_key
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := loadFile(k, configPath); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		// First segment is the section, the rest is the field name.
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// loadFile loads a YAML config file into k if the file exists.
func loadFile(k *koanf.Koanf, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// rawbytes avoids re-opening the file after the size check.
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return nil
}
