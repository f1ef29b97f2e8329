package transform

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
)

// Resize scales width and height independently. Each output side is at least
// one pixel.
func Resize(img image.Image, scaleW, scaleH float64) *image.NRGBA {
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*scaleW))
	h := max(1, int(float64(b.Dy())*scaleH))
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

// Grow scales both sides by factor, rounding up, so any factor above 1 adds
// at least one pixel per side.
func Grow(img image.Image, factor float64) *image.NRGBA {
	b := img.Bounds()
	w := max(b.Dx()+1, int(math.Ceil(float64(b.Dx())*factor)))
	h := max(b.Dy()+1, int(math.Ceil(float64(b.Dy())*factor)))
	return imaging.Resize(img, w, h, imaging.Linear)
}

// ResizeRandom downscales with probability DownscaleProbability, otherwise
// upscales, drawing the two axis factors independently.
func (p Params) ResizeRandom(rng *rand.Rand, img image.Image) *image.NRGBA {
	sw, sh := p.ResizeFactors(rng)
	return Resize(img, sw, sh)
}

// ResizeFactors draws the (width, height) factors ResizeRandom would use.
func (p Params) ResizeFactors(rng *rand.Rand) (float64, float64) {
	if rng.Float64() < p.DownscaleProbability {
		return p.DownscaleWidth.Draw(rng), p.DownscaleHeight.Draw(rng)
	}
	return p.UpscaleWidth.Draw(rng), p.UpscaleHeight.Draw(rng)
}

// Flip mirrors img left-right.
func Flip(img image.Image) *image.NRGBA {
	return imaging.FlipH(img)
}
