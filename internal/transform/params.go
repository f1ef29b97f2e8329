package transform

import (
	"fmt"
	"math/rand/v2"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `toml:"min" json:"min"`
	Max float64 `toml:"max" json:"max"`
}

// Draw returns a uniform sample from [Min, Max).
func (r Range) Draw(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func (r Range) validate(name string, lo, hi float64) error {
	if r.Min > r.Max {
		return fmt.Errorf("%s: min %v greater than max %v", name, r.Min, r.Max)
	}
	if r.Min < lo || r.Max > hi {
		return fmt.Errorf("%s: [%v,%v] outside [%v,%v]", name, r.Min, r.Max, lo, hi)
	}
	return nil
}

// Params holds the sampling ranges for the random transforms.
type Params struct {
	// DownscaleProbability is the chance ResizeRandom shrinks rather than grows.
	DownscaleProbability float64 `toml:"downscale_probability" json:"downscale_probability"`
	DownscaleWidth       Range   `toml:"downscale_width" json:"downscale_width"`
	DownscaleHeight      Range   `toml:"downscale_height" json:"downscale_height"`
	UpscaleWidth         Range   `toml:"upscale_width" json:"upscale_width"`
	UpscaleHeight        Range   `toml:"upscale_height" json:"upscale_height"`

	// BlurKernel is the range of the square kernel side, in pixels.
	BlurKernel Range `toml:"blur_kernel" json:"blur_kernel"`

	// DistortJitter bounds how far each control point moves, as a fraction
	// of the image width (x) and height (y).
	DistortJitter float64 `toml:"distort_jitter" json:"distort_jitter"`

	TintBlue  Range `toml:"tint_blue" json:"tint_blue"`
	TintGreen Range `toml:"tint_green" json:"tint_green"`

	// Gamma is sampled and inverted, so values below 1 darken.
	Gamma Range `toml:"gamma" json:"gamma"`
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		DownscaleProbability: 0.7,
		DownscaleWidth:       Range{0.4, 0.7},
		DownscaleHeight:      Range{0.4, 0.7},
		UpscaleWidth:         Range{1.0, 1.2},
		UpscaleHeight:        Range{1.0, 1.2},
		BlurKernel:           Range{10, 40},
		DistortJitter:        0.1,
		TintBlue:             Range{128, 255},
		TintGreen:            Range{0, 128},
		Gamma:                Range{0.3, 0.7},
	}
}

// Validate checks that every range is ordered and inside the domain its
// transform accepts.
func (p Params) Validate() error {
	if p.DownscaleProbability < 0 || p.DownscaleProbability > 1 {
		return fmt.Errorf("downscale_probability %v outside [0,1]", p.DownscaleProbability)
	}
	checks := []struct {
		name   string
		r      Range
		lo, hi float64
	}{
		{"downscale_width", p.DownscaleWidth, 0.01, 1},
		{"downscale_height", p.DownscaleHeight, 0.01, 1},
		{"upscale_width", p.UpscaleWidth, 1, 10},
		{"upscale_height", p.UpscaleHeight, 1, 10},
		{"blur_kernel", p.BlurKernel, 1, 1024},
		{"tint_blue", p.TintBlue, 0, 255},
		{"tint_green", p.TintGreen, 0, 255},
		{"gamma", p.Gamma, 0.01, 1},
	}
	for _, c := range checks {
		if err := c.r.validate(c.name, c.lo, c.hi); err != nil {
			return err
		}
	}
	if p.DistortJitter < 0 || p.DistortJitter > 0.25 {
		return fmt.Errorf("distort_jitter %v outside [0,0.25]", p.DistortJitter)
	}
	return nil
}
