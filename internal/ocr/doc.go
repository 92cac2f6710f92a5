// Package ocr recognizes text in extracted region patches.
//
// Recognition sits behind the Recognizer interface so that the region
// pipeline can be exercised without an OCR engine. Tesseract is the only
// production implementation and wraps the Tesseract engine via gosseract/v2.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Rotations
//
// Text in charts is frequently set vertically (axis titles). Detected
// regions are de-rotated to their minimum-area rectangle, which leaves the
// text at one of four right angles, so RecognizeRotations runs a recognizer
// over the patch and its three successive 90° counter-clockwise rotations
// and returns all four readings.
//
// # Concurrency
//
// A Tesseract value creates a fresh engine client per call and is safe for
// concurrent use. OCR is CPU-intensive; bound parallel calls accordingly.
package ocr
