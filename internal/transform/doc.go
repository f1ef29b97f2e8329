// Package transform provides the randomized image perturbations applied to
// objects, backgrounds and composites.
//
// Every transform takes an image and returns a fresh *image.NRGBA; inputs are
// never written to, so a cached background can be fed in directly. Random
// transforms draw their parameters from a caller-supplied *rand.Rand and the
// ranges in Params, which keeps a whole run reproducible from one seed.
//
// # Transforms
//
//   - Resize / Params.ResizeRandom: independent width and height scaling
//   - Flip: left-right mirror (deterministic)
//   - BoxBlur / Params.Blur: square averaging kernel
//   - Params.Distort: three-point affine warp into a same-sized canvas
//   - AddChannels / Params.Tint: saturating blue/green cast
//   - ApplyTable / Params.Darken: inverse-gamma lookup table, always darkens
package transform
