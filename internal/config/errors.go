package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
	ErrInvalidFactors     = errors.New("invalid render factors: must be positive and include 1")
	ErrInvalidKernel      = errors.New("invalid dilation kernel: size must be positive")
	ErrInvalidInflate     = errors.New("invalid region inflation: must be positive")
	ErrInvalidBackend     = errors.New("invalid store backend: must be fs or sqlite")
	ErrInvalidLogLevel    = errors.New("invalid log level: must be debug, info, warn or error")
	ErrInvalidTint        = errors.New("invalid debug tint: must be a hex colour")
	ErrInvalidFormat      = errors.New("invalid report format: must be text, json or markdown")
	ErrMissingBinary      = errors.New("external tool path must not be empty")
)

// ErrConfigNotFound is returned when an explicitly named configuration file
// does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
