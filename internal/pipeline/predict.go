package pipeline

import (
	"context"
	"image"
	"log/slog"

	"github.com/ironsheep/chartmask/internal/detection"
	"github.com/ironsheep/chartmask/internal/geometry"
	"github.com/ironsheep/chartmask/internal/imaging"
	"github.com/ironsheep/chartmask/internal/ocr"
)

// DefaultPredictThreshold is the mask level at or above which a pixel is
// treated as text.
const DefaultPredictThreshold = 200

// Prediction is one detected text region and its readings at the four
// right-angle orientations.
type Prediction struct {
	Region geometry.RotatedRect `json:"region"`
	Texts  []string             `json:"texts,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Predictor reads the text inside the regions of a predicted mask.
type Predictor struct {
	recognizer ocr.Recognizer
	threshold  uint8
	regionOpts detection.Options
	cache      *imaging.ImageCache
	logger     *slog.Logger
}

// PredictorOption configures a Predictor.
type PredictorOption func(*Predictor)

// WithThreshold sets the mask threshold.
func WithThreshold(t uint8) PredictorOption {
	return func(p *Predictor) {
		p.threshold = t
	}
}

// WithRegionOptions sets the region extraction parameters.
func WithRegionOptions(opts detection.Options) PredictorOption {
	return func(p *Predictor) {
		p.regionOpts = opts
	}
}

// WithImageCache shares an image cache between predictions.
func WithImageCache(c *imaging.ImageCache) PredictorOption {
	return func(p *Predictor) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithPredictorLogger sets the logger.
func WithPredictorLogger(logger *slog.Logger) PredictorOption {
	return func(p *Predictor) {
		p.logger = logger
	}
}

// NewPredictor creates a Predictor that reads patches with r.
func NewPredictor(r ocr.Recognizer, opts ...PredictorOption) *Predictor {
	p := &Predictor{
		recognizer: r,
		threshold:  DefaultPredictThreshold,
		cache:      imaging.NewImageCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Predict loads the predicted mask and the chart image from disk and runs
// PredictImages.
func (p *Predictor) Predict(ctx context.Context, maskPath, imagePath string) ([]Prediction, error) {
	m, err := p.cache.LoadGray(maskPath)
	if err != nil {
		return nil, err
	}
	img, err := p.cache.Load(imagePath)
	if err != nil {
		return nil, err
	}
	return p.PredictImages(ctx, m, img)
}

// PredictImages extracts the regions of mask from img and recognizes each
// patch at four orientations. A recognition failure is recorded on its
// prediction and does not stop the others.
func (p *Predictor) PredictImages(ctx context.Context, mask, img image.Image) ([]Prediction, error) {
	patches, err := detection.ExtractRegions(mask, img, p.threshold, p.regionOpts)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("regions extracted", "count", len(patches))

	preds := make([]Prediction, 0, len(patches))
	for i, patch := range patches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pred := Prediction{Region: patch.Region}
		texts, err := ocr.RecognizeRotations(ctx, p.recognizer, patch.Image)
		if err != nil {
			p.logger.Warn("recognition failed", "region", i, "error", err)
			pred.Error = err.Error()
		} else {
			pred.Texts = texts
		}
		preds = append(preds, pred)
	}
	return preds, nil
}
