package transform

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ironsheep/image-maker/internal/errors"
)

// Point is a sub-pixel coordinate.
type Point struct {
	X, Y float64
}

// SolveAffine returns the affine map taking each src point to the matching
// dst point. The source points must not be collinear.
func SolveAffine(src, dst [3]Point) (f64.Aff3, error) {
	x1, y1 := src[0].X, src[0].Y
	x2, y2 := src[1].X, src[1].Y
	x3, y3 := src[2].X, src[2].Y

	det := x1*(y2-y3) + x2*(y3-y1) + x3*(y1-y2)
	if math.Abs(det) < 1e-9 {
		return f64.Aff3{}, errors.New(errors.ErrCodeGeometry, "control points are collinear")
	}

	// Cramer's rule, once per output axis
	solve := func(u1, u2, u3 float64) (float64, float64, float64) {
		a := (u1*(y2-y3) + u2*(y3-y1) + u3*(y1-y2)) / det
		b := (u1*(x3-x2) + u2*(x1-x3) + u3*(x2-x1)) / det
		c := (u1*(x2*y3-x3*y2) + u2*(x3*y1-x1*y3) + u3*(x1*y2-x2*y1)) / det
		return a, b, c
	}
	a, b, c := solve(dst[0].X, dst[1].X, dst[2].X)
	d, e, f := solve(dst[0].Y, dst[1].Y, dst[2].Y)
	return f64.Aff3{a, b, c, d, e, f}, nil
}

// ControlPoints returns the source anchors used by Distort: top-left,
// top-right and centre.
func ControlPoints(size image.Point) [3]Point {
	w, h := float64(size.X), float64(size.Y)
	return [3]Point{{0, 0}, {w, 0}, {w / 2, h / 2}}
}

// Warp resamples img through m into a canvas of the same size filled with
// fill wherever no source pixel lands.
func Warp(img image.Image, m f64.Aff3, fill color.Color) *image.NRGBA {
	src := imaging.Clone(img)
	canvas := imaging.New(src.Bounds().Dx(), src.Bounds().Dy(), fill)
	xdraw.BiLinear.Transform(canvas, m, src, src.Bounds(), xdraw.Src, nil)
	return canvas
}

// Distort warps img by moving each control point up to DistortJitter of the
// image size in each axis and resampling through the solved affine map. The
// output has the input's dimensions; uncovered pixels take fill.
func (p Params) Distort(rng *rand.Rand, img image.Image, fill color.Color) *image.NRGBA {
	size := img.Bounds().Size()
	src := ControlPoints(size)

	jx := p.DistortJitter * float64(size.X)
	jy := p.DistortJitter * float64(size.Y)
	var dst [3]Point
	for i, s := range src {
		dst[i] = Point{
			X: s.X + (2*rng.Float64()-1)*jx,
			Y: s.Y + (2*rng.Float64()-1)*jy,
		}
	}

	m, err := SolveAffine(src, dst)
	if err != nil {
		// a degenerate draw leaves the image as it was
		return imaging.Clone(img)
	}
	return Warp(img, m, fill)
}
