// Package imaging is the image codec collaborator of the generator.
//
// It reads raster images from disk (PNG, JPEG and GIF), caches decoded images
// so that a background drawn many times is decoded once, writes composited
// samples as JPEG and parses the hex colour strings used in configuration.
// Decoded images are flattened to opaque pixels; a cutout's transparent
// margin keeps its stored colour. Other pixel work happens elsewhere.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Images handed out by the cache are
// shared and must be treated as read-only; every transform in the generator
// produces a fresh buffer instead of writing into its input.
//
// # Error Handling
//
// Functions return wrapped errors for missing files, undecodable data and
// encoding failures. The caller decides whether a decode failure is worth a
// retry.
package imaging
