package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File names searched by FindConfigFile.
const (
	DefaultConfigFile = ".chartmask.yaml"
	XDGConfigFile     = "config.yaml"
	DotEnvFile        = ".env"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHARTMASK_"

// Load builds the effective configuration: defaults, then the YAML file
// named by configPath (or found by FindConfigFile), then .env, then the
// CHARTMASK_* environment. It returns the file it read, if any. An
// explicit configPath that does not exist yields ErrConfigNotFound.
func Load(configPath string) (*Config, string, error) {
	cfg := NewConfig()

	if err := LoadDotEnv(DotEnvFile); err != nil {
		return nil, "", err
	}

	path := FindConfigFile(configPath)
	if configPath != "" && path == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	if path != "" {
		if err := LoadConfigFile(path, cfg); err != nil {
			return nil, "", err
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// LoadDotEnv loads name into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(name string) error {
	err := godotenv.Load(name)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", name, err)
}

// LoadConfigFile decodes the YAML file at path over cfg. Keys absent from
// the file keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, when given
//  2. .chartmask.yaml in the current directory
//  3. config.yaml in the XDG config directory
//
// It returns an empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(XDGConfigDir(), XDGConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with the CHARTMASK_* variables visible through
// lookup. A variable that does not parse is an error.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	env := envReader{lookup: lookup}

	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.integer("CONCURRENCY", &cfg.Concurrency)

	env.intList("FACTORS", &cfg.Label.Factors)
	env.boolean("FLAT", &cfg.Label.Flat)
	env.boolean("DEBUG_IMAGES", &cfg.Label.DebugImages)
	env.str("DEBUG_TINT", &cfg.Label.DebugTint)
	env.boolean("SKIP_BAD", &cfg.Label.SkipBad)
	env.str("TEMP_DIR", &cfg.Label.TempDir)

	env.integer("PREDICT_THRESHOLD", &cfg.Predict.Threshold)
	env.integer("SCORE_THRESHOLD", &cfg.Score.PredictionThreshold)
	env.str("REPORT_FORMAT", &cfg.Score.Format)

	env.str("OCR_LANGUAGE", &cfg.OCR.Language)
	env.str("TESSDATA_PREFIX", &cfg.OCR.TessdataPrefix)

	env.str("PDFFIGURES", &cfg.Tools.Pdffigures)
	env.str("PDFTOPPM", &cfg.Tools.Pdftoppm)

	env.str("STORE_BACKEND", &cfg.Store.Backend)
	env.str("STORE_PATH", &cfg.Store.Path)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (e *envReader) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) integer(name string, dst *int) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = n
}

func (e *envReader) boolean(name string, dst *bool) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = b
}

// intList parses a comma separated list such as "1,2".
func (e *envReader) intList(name string, dst *[]int) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			return
		}
		out = append(out, n)
	}
	*dst = out
}
