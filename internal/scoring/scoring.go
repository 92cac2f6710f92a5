// Package scoring compares predicted text masks against ground truth and
// aggregates precision, recall and F1 over a dataset.
//
// Both masks are binarized and dilated before comparison, so a predicted
// pixel close to (but not on) a true pixel is not counted as a false
// positive, and vice versa. Counts are in pixels.
package scoring

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/chartmask/internal/imaging"
)

var (
	// ErrUndefinedMetric is returned by Result.Err when a metric has a zero
	// denominator.
	ErrUndefinedMetric = errors.New("metric undefined: zero denominator")

	// ErrMissingFile marks a pair skipped because a file does not exist.
	ErrMissingFile = errors.New("mask file not found")
)

// Defaults for Options.
const (
	DefaultPredictionThreshold = 200
	DefaultTruthThreshold      = 127
	DefaultKernelSize          = 3
	DefaultIterations          = 3
	DefaultConcurrency         = 4
)

// NameMapper derives the ground-truth path for a prediction path.
type NameMapper func(predPath string) string

// Options control mask comparison. Start from DefaultOptions; thresholds
// are used as given.
type Options struct {
	// PredictionThreshold: prediction pixels brighter than this are positive.
	PredictionThreshold uint8

	// TruthThreshold: truth pixels brighter than this are positive.
	TruthThreshold uint8

	// KernelSize and Iterations define the tolerance dilation.
	KernelSize int
	Iterations int

	// Concurrency bounds the number of pairs loaded in parallel by ScoreList.
	Concurrency int

	// NameMapper maps prediction files to truth files in ScoreList.
	NameMapper NameMapper

	// Logger receives skip notices. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the standard comparison settings.
func DefaultOptions() Options {
	return Options{
		PredictionThreshold: DefaultPredictionThreshold,
		TruthThreshold:      DefaultTruthThreshold,
		KernelSize:          DefaultKernelSize,
		Iterations:          DefaultIterations,
		Concurrency:         DefaultConcurrency,
		NameMapper:          TruthPath,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Counts are the pixel tallies of one or more comparisons.
type Counts struct {
	TP int64 `json:"tp"`
	FP int64 `json:"fp"`
	FN int64 `json:"fn"`
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{TP: c.TP + o.TP, FP: c.FP + o.FP, FN: c.FN + o.FN}
}

// Compare scores one prediction against its ground truth.
//
// The truth mask is resized to the prediction size. The prediction is
// binarized at PredictionThreshold and the truth at TruthThreshold (strictly
// greater is positive), each is dilated, and:
//
//	FP = |pred \ dilate(truth)|
//	FN = |truth \ dilate(pred)|
//	TP = |pred ∩ truth|
func Compare(pred, truth image.Image, opts Options) (Counts, error) {
	p := imaging.ToGray(pred)
	t := imaging.ToGray(truth)
	t = imaging.ResizeGray(t, p.Bounds().Dx(), p.Bounds().Dy())

	pb := imaging.BinarizeAbove(p, opts.PredictionThreshold)
	tb := imaging.BinarizeAbove(t, opts.TruthThreshold)

	pd, err := imaging.Dilate(pb, opts.KernelSize, opts.Iterations)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to dilate prediction: %w", err)
	}
	td, err := imaging.Dilate(tb, opts.KernelSize, opts.Iterations)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to dilate truth: %w", err)
	}

	return Counts{
		TP: imaging.CountAnd(pb, tb),
		FP: imaging.CountAndNot(pb, td),
		FN: imaging.CountAndNot(tb, pd),
	}, nil
}

// Accumulator sums counts over a batch. It is not safe for concurrent use.
type Accumulator struct {
	Counts
	Pairs   int
	Skipped int
}

// Add compares one pair and adds its counts.
func (a *Accumulator) Add(pred, truth image.Image, opts Options) error {
	c, err := Compare(pred, truth, opts)
	if err != nil {
		return err
	}
	a.AddCounts(c)
	return nil
}

// AddCounts adds precomputed counts for one pair.
func (a *Accumulator) AddCounts(c Counts) {
	a.Counts = a.Counts.Add(c)
	a.Pairs++
}

// Skip records a pair that could not be scored.
func (a *Accumulator) Skip() {
	a.Skipped++
}

// Metric is a ratio that may be undefined.
type Metric struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

func ratio(num, den float64) Metric {
	if den == 0 {
		return Metric{}
	}
	return Metric{Value: num / den, Defined: true}
}

// String formats the metric, printing "undefined" when it has no value.
func (m Metric) String() string {
	if !m.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%.6f", m.Value)
}

// Result is the outcome of a batch.
type Result struct {
	Counts
	Pairs     int    `json:"pairs"`
	Skipped   int    `json:"skipped"`
	Precision Metric `json:"precision"`
	Recall    Metric `json:"recall"`
	F1        Metric `json:"f1"`

	// Details lists every list entry in order when produced by ScoreList.
	Details []PairResult `json:"details,omitempty"`
}

// Err returns ErrUndefinedMetric when any metric is undefined.
func (r Result) Err() error {
	var undefined []string
	if !r.Precision.Defined {
		undefined = append(undefined, "precision")
	}
	if !r.Recall.Defined {
		undefined = append(undefined, "recall")
	}
	if !r.F1.Defined {
		undefined = append(undefined, "f1")
	}
	if len(undefined) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUndefinedMetric, undefined)
}

// Finalize derives precision, recall and F1 from the accumulated counts.
func (a *Accumulator) Finalize() Result {
	tp, fp, fn := float64(a.TP), float64(a.FP), float64(a.FN)
	r := Result{
		Counts:    a.Counts,
		Pairs:     a.Pairs,
		Skipped:   a.Skipped,
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
	}
	if r.Precision.Defined && r.Recall.Defined {
		p, rc := r.Precision.Value, r.Recall.Value
		r.F1 = ratio(2*p*rc, p+rc)
	}
	return r
}

// Pair is an in-memory prediction and truth mask.
type Pair struct {
	Prediction image.Image
	Truth      image.Image
}

// Score compares every pair and returns the aggregated result. A failing
// comparison aborts the batch.
func Score(pairs []Pair, opts Options) (Result, error) {
	var acc Accumulator
	for i, p := range pairs {
		if err := acc.Add(p.Prediction, p.Truth, opts); err != nil {
			return Result{}, fmt.Errorf("pair %d: %w", i, err)
		}
	}
	return acc.Finalize(), nil
}
