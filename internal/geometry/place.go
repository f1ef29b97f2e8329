package geometry

import (
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-maker/internal/errors"
)

// Placement is the top-left pixel at which an object is overlaid on a background.
type Placement struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Options controls how object pixels are written over the background.
type Options struct {
	// Transparent enables the key-colour rule: object pixels whose RGB equals
	// Key show the background instead.
	Transparent bool

	// Key is the colour treated as transparent when Transparent is set.
	Key color.NRGBA
}

// Composite is the result of placing one object on one background.
type Composite struct {
	Image     *image.NRGBA
	Placement Placement
	Box       Box
}

// RandomPlacement draws a placement that keeps an object of size obj fully
// inside a background of size bg. Both sizes are (width, height) points and
// obj must not exceed bg in either axis.
//
// The offset is a random fraction of the unused margin scaled to the
// background, clamped back to the boundary if rounding would overflow it.
func RandomPlacement(rng *rand.Rand, obj, bg image.Point) Placement {
	return Placement{
		X: randomOffset(rng, obj.X, bg.X),
		Y: randomOffset(rng, obj.Y, bg.Y),
	}
}

func randomOffset(rng *rand.Rand, objLen, bgLen int) int {
	margin := 1 - float64(objLen)/float64(bgLen)
	off := int(rng.Float64() * margin * float64(bgLen))
	if off+objLen > bgLen {
		off -= off + objLen - bgLen
	}
	if off < 0 {
		off = 0
	}
	return off
}

// Place overlays object onto a copy of background at a random placement and
// returns the composite together with its normalized box.
//
// The background must be at least as large as the object in both axes; the
// caller upscales it beforehand. Neither input is modified.
func Place(rng *rand.Rand, object, background image.Image, opts Options) (*Composite, error) {
	obj := object.Bounds().Size()
	bg := background.Bounds().Size()
	if obj.X <= 0 || obj.Y <= 0 {
		return nil, errors.New(errors.ErrCodeGeometry, "empty object image %dx%d", obj.X, obj.Y)
	}
	if obj.X > bg.X || obj.Y > bg.Y {
		return nil, errors.New(errors.ErrCodeGeometry,
			"object %dx%d does not fit background %dx%d", obj.X, obj.Y, bg.X, bg.Y)
	}

	p := RandomPlacement(rng, obj, bg)
	box := NewBox(p, obj, bg)
	if !box.Valid() {
		return nil, errors.New(errors.ErrCodeGeometry,
			"placement %+v of %dx%d object gives label outside the unit square", p, obj.X, obj.Y)
	}
	return &Composite{
		Image:     Overlay(object, background, p, opts),
		Placement: p,
		Box:       box,
	}, nil
}

// Overlay writes object over a fresh copy of background with its top-left
// corner at p. With opts.Transparent, key-coloured object pixels are restored
// from the original background rather than from the composite.
func Overlay(object, background image.Image, p Placement, opts Options) *image.NRGBA {
	base := imaging.Clone(background)
	out := imaging.Paste(base, object, image.Pt(p.X, p.Y))
	if !opts.Transparent {
		return out
	}

	region := image.Rect(p.X, p.Y, p.X+object.Bounds().Dx(), p.Y+object.Bounds().Dy()).Intersect(out.Bounds())
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			i := out.PixOffset(x, y)
			px := out.Pix[i : i+4 : i+4]
			if px[0] == opts.Key.R && px[1] == opts.Key.G && px[2] == opts.Key.B {
				copy(px, base.Pix[i:i+4])
			}
		}
	}
	return out
}
