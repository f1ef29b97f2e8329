package transform

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
)

// AddChannels adds constant offsets to the red, green and blue channels,
// saturating at 0 and 255. Alpha is unchanged.
func AddChannels(img image.Image, dr, dg, db int) *image.NRGBA {
	out := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		c.R = saturate(int(c.R) + dr)
		c.G = saturate(int(c.G) + dg)
		c.B = saturate(int(c.B) + db)
		return c
	})
	return imaging.Clone(out)
}

// Tint casts img blue-green the way water does: blue and green offsets are
// drawn from TintBlue and TintGreen and added with saturation.
func (p Params) Tint(rng *rand.Rand, img image.Image) *image.NRGBA {
	blue := int(p.TintBlue.Draw(rng))
	green := int(p.TintGreen.Draw(rng))
	return AddChannels(img, 0, green, blue)
}

// GammaTable builds the 256-entry table 255 * (i/255)^(1/gamma).
func GammaTable(gamma float64) [256]uint8 {
	var table [256]uint8
	inv := 1 / gamma
	for i := range table {
		table[i] = uint8(math.Pow(float64(i)/255, inv) * 255)
	}
	return table
}

// ApplyTable maps the red, green and blue channels of every pixel through table.
func ApplyTable(img image.Image, table [256]uint8) *image.NRGBA {
	out := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		c.R = table[c.R]
		c.G = table[c.G]
		c.B = table[c.B]
		return c
	})
	return imaging.Clone(out)
}

// Darken applies an inverse-gamma curve with gamma drawn from Gamma. With
// gamma below 1 no channel value ever increases.
func (p Params) Darken(rng *rand.Rand, img image.Image) *image.NRGBA {
	return ApplyTable(img, GammaTable(p.Gamma.Draw(rng)))
}

func saturate(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
