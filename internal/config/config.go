package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/chartmask/internal/blobstore"
	"github.com/ironsheep/chartmask/internal/detection"
	"github.com/ironsheep/chartmask/internal/imaging"
	"github.com/ironsheep/chartmask/internal/mask"
	"github.com/ironsheep/chartmask/internal/ocr"
	"github.com/ironsheep/chartmask/internal/scoring"
)

// AppName is used for XDG directory paths and the environment prefix.
const AppName = "chartmask"

// Defaults that have no counterpart in a domain package.
const (
	DefaultLogLevel     = "info"
	DefaultConcurrency  = 4
	DefaultDebugTint    = imaging.DefaultTint
	DefaultPdffigures   = "pdffigures"
	DefaultPdftoppm     = "pdftoppm"
	DefaultReportFormat = "text"
	DefaultPredictLevel = 200
)

// Config holds every tunable of the chartmask commands. It is populated
// from NewConfig, then a YAML file, then the environment, then CLI flags.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Concurrency bounds figure processing and pair loading.
	Concurrency int `yaml:"concurrency"`

	Label   LabelConfig   `yaml:"label"`
	Predict PredictConfig `yaml:"predict"`
	Score   ScoreConfig   `yaml:"score"`
	OCR     OCRConfig     `yaml:"ocr"`
	Tools   ToolsConfig   `yaml:"tools"`
	Store   StoreConfig   `yaml:"store"`
}

// LabelConfig controls label generation.
type LabelConfig struct {
	// Factors are the render scales; 1 is always produced.
	Factors []int `yaml:"factors"`

	Flat        bool   `yaml:"flat"`
	DebugImages bool   `yaml:"debug_images"`
	DebugTint   string `yaml:"debug_tint"`
	SkipBad     bool   `yaml:"skip_bad"`

	// KernelSize and Iterations define the text box dilation.
	KernelSize int `yaml:"kernel_size"`
	Iterations int `yaml:"iterations"`

	// TempDir holds rendered pages and downloaded PDFs. Empty means the
	// system default.
	TempDir string `yaml:"temp_dir"`
}

// PredictConfig controls region extraction from predicted masks.
type PredictConfig struct {
	Threshold     int     `yaml:"threshold"`
	Inflate       float64 `yaml:"inflate"`
	SnapTolerance float64 `yaml:"snap_tolerance"`
	MinPixels     int     `yaml:"min_pixels"`
}

// ScoreConfig controls mask scoring.
type ScoreConfig struct {
	PredictionThreshold int    `yaml:"prediction_threshold"`
	TruthThreshold      int    `yaml:"truth_threshold"`
	KernelSize          int    `yaml:"kernel_size"`
	Iterations          int    `yaml:"iterations"`
	Format              string `yaml:"format"`
}

// OCRConfig selects the tesseract language data.
type OCRConfig struct {
	Language       string `yaml:"language"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// ToolsConfig names the external binaries.
type ToolsConfig struct {
	Pdffigures string `yaml:"pdffigures"`
	Pdftoppm   string `yaml:"pdftoppm"`
}

// StoreConfig selects the blob store used by the bucket commands.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		Concurrency: DefaultConcurrency,
		Label: LabelConfig{
			Factors:    []int{1, 2},
			DebugTint:  DefaultDebugTint,
			KernelSize: mask.DefaultKernelSize,
			Iterations: mask.DefaultIterations,
		},
		Predict: PredictConfig{
			Threshold:     DefaultPredictLevel,
			Inflate:       detection.DefaultInflate,
			SnapTolerance: detection.DefaultSnapTolerance,
			MinPixels:     detection.DefaultMinPixels,
		},
		Score: ScoreConfig{
			PredictionThreshold: scoring.DefaultPredictionThreshold,
			TruthThreshold:      scoring.DefaultTruthThreshold,
			KernelSize:          scoring.DefaultKernelSize,
			Iterations:          scoring.DefaultIterations,
			Format:              DefaultReportFormat,
		},
		OCR: OCRConfig{
			Language: ocr.DefaultLanguage,
		},
		Tools: ToolsConfig{
			Pdffigures: DefaultPdffigures,
			Pdftoppm:   DefaultPdftoppm,
		},
		Store: StoreConfig{
			Backend: blobstore.BackendFS,
			Path:    filepath.Join(XDGDataDir(), "buckets"),
		},
	}
}

// XDGConfigDir returns the XDG config directory for chartmask.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the XDG data directory for chartmask.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	hasBase := false
	for _, f := range c.Label.Factors {
		if f <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidFactors, f)
		}
		if f == 1 {
			hasBase = true
		}
	}
	if !hasBase {
		return ErrInvalidFactors
	}
	if c.Label.KernelSize <= 0 || c.Score.KernelSize <= 0 {
		return ErrInvalidKernel
	}
	if _, err := colorful.Hex(c.Label.DebugTint); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTint, c.Label.DebugTint)
	}

	if err := validateLevel("predict.threshold", c.Predict.Threshold); err != nil {
		return err
	}
	if err := validateLevel("score.prediction_threshold", c.Score.PredictionThreshold); err != nil {
		return err
	}
	if err := validateLevel("score.truth_threshold", c.Score.TruthThreshold); err != nil {
		return err
	}
	if c.Predict.Inflate <= 0 {
		return ErrInvalidInflate
	}

	switch c.Score.Format {
	case "text", "json", "markdown", "md":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Score.Format)
	}
	switch c.Store.Backend {
	case blobstore.BackendFS, blobstore.BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Store.Backend)
	}
	if c.Tools.Pdffigures == "" || c.Tools.Pdftoppm == "" {
		return ErrMissingBinary
	}
	return nil
}

func validateLevel(name string, v int) error {
	if v < 0 || v > 255 {
		return fmt.Errorf("invalid %s %d: must be within 0..255", name, v)
	}
	return nil
}

// MaskOptions returns the mask generation settings for factor.
func (c *Config) MaskOptions(factor int) mask.Options {
	return mask.Options{
		Factor:     float64(factor),
		KernelSize: c.Label.KernelSize,
		Iterations: c.Label.Iterations,
	}
}

// RegionOptions returns the region extraction settings.
func (c *Config) RegionOptions() detection.Options {
	return detection.Options{
		Inflate:       c.Predict.Inflate,
		SnapTolerance: c.Predict.SnapTolerance,
		MinPixels:     c.Predict.MinPixels,
	}
}

// ScoringOptions returns the scoring settings. The name mapper is the
// default TruthPath.
func (c *Config) ScoringOptions() scoring.Options {
	opts := scoring.DefaultOptions()
	opts.PredictionThreshold = uint8(c.Score.PredictionThreshold)
	opts.TruthThreshold = uint8(c.Score.TruthThreshold)
	opts.KernelSize = c.Score.KernelSize
	opts.Iterations = c.Score.Iterations
	opts.Concurrency = c.Concurrency
	return opts
}
