package geometry

import (
	"image"
	"math"
	"strconv"
	"strings"
)

// Box is a normalized, center-anchored bounding box. All fields are fractions
// of the background width (CX, W) or height (CY, H).
type Box struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
}

// NewBox derives the box of an object of size obj placed at p on a background
// of size bg.
func NewBox(p Placement, obj, bg image.Point) Box {
	return Box{
		CX: float64(2*p.X+obj.X) / float64(2*bg.X),
		CY: float64(2*p.Y+obj.Y) / float64(2*bg.Y),
		W:  float64(obj.X) / float64(bg.X),
		H:  float64(obj.Y) / float64(bg.Y),
	}
}

// Rect maps the box back to pixel space on a background of size bg.
func (b Box) Rect(bg image.Point) image.Rectangle {
	w := b.W * float64(bg.X)
	h := b.H * float64(bg.Y)
	x0 := b.CX*float64(bg.X) - w/2
	y0 := b.CY*float64(bg.Y) - h/2
	return image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x0+w)),
		int(math.Round(y0+h)),
	)
}

// Valid reports whether every field lies in [0,1] and the box stays inside
// the unit square.
func (b Box) Valid() bool {
	const eps = 1e-9
	for _, v := range []float64{b.CX, b.CY, b.W, b.H} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return false
		}
	}
	return b.CX-b.W/2 >= -eps && b.CX+b.W/2 <= 1+eps &&
		b.CY-b.H/2 >= -eps && b.CY+b.H/2 <= 1+eps
}

// Label formats the box as one detector label line:
// "<class> <cx> <cy> <w> <h>", without a trailing newline.
func (b Box) Label(class int) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(class))
	for _, v := range []float64{b.CX, b.CY, b.W, b.H} {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return sb.String()
}
