// Package imaging provides the raster operations shared by the mask generator,
// the region extractor and the scorer.
//
// The package covers loading and saving, gray conversion, binarization,
// square-kernel dilation, resizing, de-rotated patch sampling and the debug
// composite used to eyeball generated labels. All operations work with
// standard Go image types and use a coordinate system where (0,0) is the
// top-left pixel, X increases rightward and Y increases downward.
//
// # Binary Images
//
// Binary images are *image.Gray values whose pixels are either 0
// (background) or 255 (foreground). Functions that produce binary images
// always return them with their bounds starting at the origin.
//
// # Pixel Centres
//
// Geometry that addresses pixels (patch sampling, component geometry) treats
// pixel (x, y) as the point (x, y), not (x+0.5, y+0.5).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and never modify their inputs, so they can run concurrently on
// the same source image.
//
// # Performance Considerations
//
// For repeated operations on the same file, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached; use
// Evict() or Clear() to manage memory in long-running processes.
package imaging
