package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/ironsheep/chartmask/internal/blobstore"
	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/label"
)

// RecordSource lists and reads figure records by name.
type RecordSource interface {
	Names(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// DirSource reads the .json files directly inside a directory.
type DirSource struct {
	Dir string
}

// Names implements RecordSource. Subdirectories are not descended into.
func (s DirSource) Names(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read record directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Read implements RecordSource.
func (s DirSource) Read(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Dir, name))
}

// StoreSource reads the .json blobs under Prefix in a bucket.
type StoreSource struct {
	Store  blobstore.Store
	Bucket string
	Prefix string
}

// Names implements RecordSource.
func (s StoreSource) Names(ctx context.Context) ([]string, error) {
	keys, err := s.Store.List(ctx, s.Bucket, s.Prefix)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys {
		if path.Ext(k) == ".json" {
			names = append(names, k)
		}
	}
	return names, nil
}

// Read implements RecordSource.
func (s StoreSource) Read(ctx context.Context, name string) ([]byte, error) {
	return s.Store.Get(ctx, s.Bucket, name)
}

// BadFigure is a record the classifier rejected.
type BadFigure struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Reason label.Reason `json:"reason"`
}

// FindBad classifies every record of src and returns the rejected ones
// whose name carries a figure identifier, in listing order. Unreadable or
// malformed records are logged and skipped. A nil classifier uses the
// default rules.
func FindBad(ctx context.Context, src RecordSource, c *label.Classifier, logger *slog.Logger) ([]BadFigure, error) {
	if c == nil {
		c = label.NewClassifier()
	}
	if logger == nil {
		logger = slog.Default()
	}

	names, err := src.Names(ctx)
	if err != nil {
		return nil, err
	}

	var bad []BadFigure
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := src.Read(ctx, name)
		if err != nil {
			logger.Warn("skipping unreadable record", "name", name, "error", err)
			continue
		}
		fig, err := figure.Decode(data)
		if err != nil {
			logger.Warn("skipping malformed record", "name", name, "error", err)
			continue
		}

		v := c.Classify(fig)
		if !v.Bad {
			continue
		}
		logger.Debug("bad label", "name", name, "reason", v.Reason.Description())

		id, ok := figure.IDFromRecordName(path.Base(filepath.ToSlash(name)))
		if !ok {
			continue
		}
		bad = append(bad, BadFigure{ID: id, Name: name, Reason: v.Reason})
	}
	return bad, nil
}
