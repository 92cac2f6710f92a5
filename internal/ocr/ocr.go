package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Rotations is the number of orientations tried by RecognizeRotations.
const Rotations = 4

// Recognizer turns an image into text.
type Recognizer interface {
	RecognizeText(ctx context.Context, img image.Image) (string, error)
}

// WordFinder locates the individual words of an image. Tesseract
// implements it.
type WordFinder interface {
	Words(ctx context.Context, img image.Image) ([]Word, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image) (string, error)

// RecognizeText calls f.
func (f RecognizerFunc) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// RecognizeRotations runs r over img and its three successive 90°
// counter-clockwise rotations. The result always has Rotations entries,
// index i holding the reading after i rotations.
func RecognizeRotations(ctx context.Context, r Recognizer, img image.Image) ([]string, error) {
	texts := make([]string, 0, Rotations)
	cur := img
	for i := 0; i < Rotations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			cur = imaging.Rotate90(cur)
		}
		text, err := r.RecognizeText(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("rotation %d: %w", i*90, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}
