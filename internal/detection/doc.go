// Package detection recovers candidate text regions from a predicted text
// probability mask and cuts normalized patches out of the source image for
// recognition.
//
// # Algorithm Overview
//
//  1. Resampling: a mask whose size differs from the source image is resized
//     to the image size first
//  2. Thresholding: pixels at or above the threshold become foreground
//  3. Component finding: 8-connected flood fill in raster order
//  4. Fitting: minimum-area rotated rectangle over each component's pixel
//     centres
//  5. Inflation: both dimensions grow by 10% so OCR gets a margin
//  6. Snapping: angles within ±5° of a multiple of 90° become that multiple
//  7. Patch extraction: the rectangle is sampled axis-aligned from the source
//     with bilinear interpolation and edge replication
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - A pixel (x, y) is represented by the point (x, y)
//
// # Ordering
//
// Regions are returned in component discovery order: the first foreground
// pixel met in a row-major scan determines the position of its component.
// The order is stable for a given mask.
package detection
