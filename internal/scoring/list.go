package scoring

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/chartmask/internal/imaging"
	"golang.org/x/sync/errgroup"
)

// predictionSuffixLen is the length of the suffix that distinguishes a
// prediction file from its figure id, e.g. "-predicted.png".
const predictionSuffixLen = 14

// TruthPath maps a prediction file to its ground-truth mask: the last 14
// characters of the base name are replaced by "-label.png" and the result
// stays in the same directory.
func TruthPath(predPath string) string {
	base := filepath.Base(predPath)
	stem := ""
	if len(base) > predictionSuffixLen {
		stem = base[:len(base)-predictionSuffixLen]
	}
	return filepath.Join(filepath.Dir(predPath), stem+"-label.png")
}

// PairResult describes one list entry.
type PairResult struct {
	Prediction string `json:"prediction"`
	Truth      string `json:"truth"`
	Counts
	Scored bool   `json:"scored"`
	Error  string `json:"error,omitempty"`
}

// ReadList returns the non-blank entries of a prediction list, resolved
// against the list's directory.
func ReadList(listPath string) ([]string, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open prediction list: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(listPath)
	var entries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entries = append(entries, filepath.Join(dir, line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prediction list: %w", err)
	}
	return entries, nil
}

// ScoreList scores every prediction named in the list file at listPath
// against its ground truth. Pairs are loaded and compared concurrently, but
// their counts are folded in list order on the calling goroutine.
//
// Entries whose prediction or truth file is missing or unreadable are logged
// and counted as skipped. Only an unreadable list file or a cancelled
// context is an error.
func ScoreList(ctx context.Context, listPath string, opts Options) (Result, error) {
	entries, err := ReadList(listPath)
	if err != nil {
		return Result{}, err
	}
	return ScoreFiles(ctx, entries, opts)
}

// ScoreFiles is ScoreList over an explicit list of prediction paths.
func ScoreFiles(ctx context.Context, predictions []string, opts Options) (Result, error) {
	mapper := opts.NameMapper
	if mapper == nil {
		mapper = TruthPath
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	logger := opts.logger()

	details := make([]PairResult, len(predictions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, pred := range predictions {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			d := PairResult{Prediction: pred, Truth: mapper(pred)}
			c, err := compareFiles(d.Prediction, d.Truth, opts)
			if err != nil {
				d.Error = err.Error()
				logger.Warn("skipping prediction",
					"prediction", d.Prediction,
					"truth", d.Truth,
					"error", err,
				)
			} else {
				d.Counts = c
				d.Scored = true
			}
			details[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var acc Accumulator
	for _, d := range details {
		if d.Scored {
			acc.AddCounts(d.Counts)
		} else {
			acc.Skip()
		}
	}

	r := acc.Finalize()
	r.Details = details
	logger.Debug("scored prediction list",
		"pairs", r.Pairs,
		"skipped", r.Skipped,
		"tp", r.TP,
		"fp", r.FP,
		"fn", r.FN,
	)
	return r, nil
}

func compareFiles(predPath, truthPath string, opts Options) (Counts, error) {
	pred, err := loadMask(predPath)
	if err != nil {
		return Counts{}, err
	}
	truth, err := loadMask(truthPath)
	if err != nil {
		return Counts{}, err
	}
	return Compare(pred, truth, opts)
}

func loadMask(path string) (*image.Gray, error) {
	g, err := imaging.LoadGray(path)
	if imaging.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	return g, err
}
