package composer

import (
	"fmt"

	"github.com/ironsheep/image-maker/internal/errors"
	"github.com/ironsheep/image-maker/internal/imaging"
)

// Toggles enables or disables whole transform categories.
type Toggles struct {
	Resize  bool `toml:"resize" json:"resize"`
	Flip    bool `toml:"flip" json:"flip"`
	Distort bool `toml:"distort" json:"distort"`
	Blur    bool `toml:"blur" json:"blur"`
	Tint    bool `toml:"tint" json:"tint"`
	Darken  bool `toml:"darken" json:"darken"`
}

// AllEnabled turns every category on.
func AllEnabled() Toggles {
	return Toggles{Resize: true, Flip: true, Distort: true, Blur: true, Tint: true, Darken: true}
}

// Names lists the enabled categories in pipeline order.
func (t Toggles) Names() []string {
	var names []string
	for _, c := range []struct {
		on   bool
		name string
	}{
		{t.Resize, "resize"}, {t.Flip, "flip"}, {t.Distort, "distort"},
		{t.Tint, "tint"}, {t.Darken, "darken"}, {t.Blur, "blur"},
	} {
		if c.on {
			names = append(names, c.name)
		}
	}
	return names
}

// Disable turns off the named category. Unknown names are invalid input.
func (t *Toggles) Disable(name string) error {
	switch name {
	case "resize":
		t.Resize = false
	case "flip":
		t.Flip = false
	case "distort":
		t.Distort = false
	case "blur":
		t.Blur = false
	case "tint":
		t.Tint = false
	case "darken":
		t.Darken = false
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown transform %q", name)
	}
	return nil
}

// Probabilities are the per-step chances that an enabled category fires.
type Probabilities struct {
	ObjectResize   float64 `toml:"object_resize" json:"object_resize"`
	ObjectFlip     float64 `toml:"object_flip" json:"object_flip"`
	ObjectDistort  float64 `toml:"object_distort" json:"object_distort"`
	BackgroundFlip float64 `toml:"background_flip" json:"background_flip"`
	BackgroundBlur float64 `toml:"background_blur" json:"background_blur"`
	Tint           float64 `toml:"tint" json:"tint"`
	Darken         float64 `toml:"darken" json:"darken"`
	Blur           float64 `toml:"blur" json:"blur"`
}

// Options configures the scene composer.
type Options struct {
	Enabled     Toggles       `toml:"enabled" json:"enabled"`
	Probability Probabilities `toml:"probability" json:"probability"`

	// MaxDecodeRetries bounds how many backgrounds are drawn before a
	// sample fails on unreadable images.
	MaxDecodeRetries int `toml:"max_decode_retries" json:"max_decode_retries"`

	// MaxUpscaleSteps bounds how often a too-small background is grown by
	// UpscaleFactor before the sample fails.
	MaxUpscaleSteps int     `toml:"max_upscale_steps" json:"max_upscale_steps"`
	UpscaleFactor   float64 `toml:"upscale_factor" json:"upscale_factor"`

	// Transparent makes TransparentKey-coloured object pixels show the
	// background.
	Transparent    bool   `toml:"transparent" json:"transparent"`
	TransparentKey string `toml:"transparent_key" json:"transparent_key"`
}

// DefaultOptions returns the reference pipeline settings.
func DefaultOptions() Options {
	return Options{
		Enabled: AllEnabled(),
		Probability: Probabilities{
			ObjectResize:   0.95,
			ObjectFlip:     0.5,
			ObjectDistort:  0.95,
			BackgroundFlip: 0.5,
			BackgroundBlur: 0.5,
			Tint:           0.95,
			Darken:         0.95,
			Blur:           0.5,
		},
		MaxDecodeRetries: 10,
		MaxUpscaleSteps:  20,
		UpscaleFactor:    1.5,
		TransparentKey:   "#000000",
	}
}

// Validate checks probabilities, loop bounds and the key colour.
func (o Options) Validate() error {
	p := o.Probability
	checks := []struct {
		name string
		v    float64
	}{
		{"object_resize", p.ObjectResize},
		{"object_flip", p.ObjectFlip},
		{"object_distort", p.ObjectDistort},
		{"background_flip", p.BackgroundFlip},
		{"background_blur", p.BackgroundBlur},
		{"tint", p.Tint},
		{"darken", p.Darken},
		{"blur", p.Blur},
	}
	for _, c := range checks {
		if c.v < 0 || c.v > 1 {
			return fmt.Errorf("probability.%s %v outside [0,1]", c.name, c.v)
		}
	}
	if o.MaxDecodeRetries < 1 {
		return fmt.Errorf("max_decode_retries must be at least 1, got %d", o.MaxDecodeRetries)
	}
	if o.MaxUpscaleSteps < 0 {
		return fmt.Errorf("max_upscale_steps must not be negative, got %d", o.MaxUpscaleSteps)
	}
	if o.UpscaleFactor <= 1 {
		return fmt.Errorf("upscale_factor must be greater than 1, got %v", o.UpscaleFactor)
	}
	if _, err := imaging.ParseHexColor(o.TransparentKey); err != nil {
		return fmt.Errorf("transparent_key: %w", err)
	}
	return nil
}
