package transform

import (
	"image"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// BoxBlur averages each pixel over a kernel x kernel square. Edge pixels are
// extended past the border and alpha is kept. A kernel of 1 or less returns a
// copy.
//
// The square average is run as a horizontal pass followed by a vertical one,
// each kernel taps long.
func BoxBlur(img image.Image, kernel int) *image.NRGBA {
	if kernel <= 1 {
		return imaging.Clone(img)
	}

	opts := &convolution.Options{KeepAlpha: true}
	rows := convolution.Convolve(img, boxKernel(kernel, 1), opts)
	return imaging.Clone(convolution.Convolve(rows, boxKernel(1, kernel), opts))
}

// boxKernel is a normalized width x height kernel of equal weights.
func boxKernel(width, height int) convolution.Matrix {
	k := convolution.NewKernel(width, height)
	for i := range k.Matrix {
		k.Matrix[i] = 1
	}
	return k.Normalized()
}

// Blur applies BoxBlur with a kernel side drawn from BlurKernel.
func (p Params) Blur(rng *rand.Rand, img image.Image) *image.NRGBA {
	return BoxBlur(img, int(p.BlurKernel.Draw(rng)))
}
