// Package composer builds one labeled sample at a time.
//
// A sample is made by loading an object image, perturbing it, drawing a
// background from the pool, fitting and perturbing the background, placing
// the object and finally perturbing the composite:
//
//	object:     resize -> flip -> distort
//	background: draw (bounded redraws) -> upscale until it fits -> flip -> blur
//	composite:  place -> tint -> darken -> blur
//
// Each step runs only when its category is enabled and its biased coin fires.
// All randomness comes from the one *rand.Rand given to New, so a run is
// reproducible from its seed.
package composer

import (
	"context"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-maker/internal/catalog"
	"github.com/ironsheep/image-maker/internal/errors"
	"github.com/ironsheep/image-maker/internal/geometry"
	imgio "github.com/ironsheep/image-maker/internal/imaging"
	"github.com/ironsheep/image-maker/internal/transform"
)

// Loader decodes images by path. Returned images are treated as read-only.
type Loader interface {
	Load(path string) (image.Image, error)
}

// Sample is one generated image with its label. Box is nil for a negative
// sample.
type Sample struct {
	Image      *image.NRGBA
	Class      int
	Box        *geometry.Box
	Background string
	Applied    []string
}

// Negative reports whether the sample carries no object.
func (s *Sample) Negative() bool {
	return s.Box == nil
}

// Label returns the label file contents: one "<class> <cx> <cy> <w> <h>" line
// or an empty string for a negative sample.
func (s *Sample) Label() string {
	if s.Box == nil {
		return ""
	}
	return s.Box.Label(s.Class)
}

// Composer produces samples from a catalog.
type Composer struct {
	catalog *catalog.Catalog
	loader  Loader
	rng     *rand.Rand
	params  transform.Params
	opts    Options
	key     color.NRGBA
	logger  *log.Logger
}

// New creates a composer. The rng is consumed sequentially and must not be
// shared with concurrent users.
func New(cat *catalog.Catalog, loader Loader, rng *rand.Rand, opts Options, params transform.Params, logger *log.Logger) (*Composer, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "invalid composer options")
	}
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "invalid transform parameters")
	}
	key, _ := imgio.ParseHexColor(opts.TransparentKey)
	if logger == nil {
		logger = log.Default()
	}
	return &Composer{
		catalog: cat,
		loader:  loader,
		rng:     rng,
		params:  params,
		opts:    opts,
		key:     key,
		logger:  logger,
	}, nil
}

// TransparentKey returns the keyed-out colour as "#RRGGBB", or "" when
// transparency is off.
func (c *Composer) TransparentKey() string {
	if !c.opts.Transparent {
		return ""
	}
	return imgio.HexString(c.key)
}

// Compose builds one sample of obj's class on a random background.
func (c *Composer) Compose(ctx context.Context, obj catalog.Object) (*Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := c.loader.Load(obj.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecoverableIO, err, "unreadable object image %s", obj.Path)
	}

	var applied []string
	on, p := c.opts.Enabled, c.opts.Probability

	object := src
	if c.fire(on.Resize, p.ObjectResize) {
		object = c.params.ResizeRandom(c.rng, object)
		applied = append(applied, "object_resize")
	}
	if c.fire(on.Flip, p.ObjectFlip) {
		object = transform.Flip(object)
		applied = append(applied, "object_flip")
	}
	if c.fire(on.Distort, p.ObjectDistort) {
		object = c.params.Distort(c.rng, object, c.key)
		applied = append(applied, "object_distort")
	}

	bg, bgPath, err := c.drawBackground()
	if err != nil {
		return nil, err
	}
	bg, err = c.fitBackground(bg, object.Bounds().Size())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeometry, err, "object %s on background %s", obj.Path, bgPath)
	}
	if c.fire(on.Flip, p.BackgroundFlip) {
		bg = transform.Flip(bg)
		applied = append(applied, "background_flip")
	}
	if c.fire(on.Blur, p.BackgroundBlur) {
		bg = c.params.Blur(c.rng, bg)
		applied = append(applied, "background_blur")
	}

	comp, err := geometry.Place(c.rng, object, bg, geometry.Options{
		Transparent: c.opts.Transparent,
		Key:         c.key,
	})
	if err != nil {
		return nil, err
	}

	out := comp.Image
	if c.fire(on.Tint, p.Tint) {
		out = c.params.Tint(c.rng, out)
		applied = append(applied, "tint")
	}
	if c.fire(on.Darken, p.Darken) {
		out = c.params.Darken(c.rng, out)
		applied = append(applied, "darken")
	}
	if c.fire(on.Blur, p.Blur) {
		out = c.params.Blur(c.rng, out)
		applied = append(applied, "blur")
	}

	box := comp.Box
	c.logger.Debug("composed sample",
		"class", obj.Class,
		"background", bgPath,
		"x", comp.Placement.X,
		"y", comp.Placement.Y,
		"applied", applied)

	return &Sample{
		Image:      out,
		Class:      obj.Class,
		Box:        &box,
		Background: bgPath,
		Applied:    applied,
	}, nil
}

// Negative returns an unmodified random background with an empty label,
// tagged with class slot.
func (c *Composer) Negative(ctx context.Context, slot int) (*Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bg, bgPath, err := c.drawBackground()
	if err != nil {
		return nil, err
	}
	return &Sample{
		Image:      imaging.Clone(bg),
		Class:      slot,
		Background: bgPath,
	}, nil
}

// fire flips the biased coin for an enabled category.
func (c *Composer) fire(enabled bool, probability float64) bool {
	return enabled && c.rng.Float64() < probability
}

// drawBackground picks backgrounds uniformly until one decodes, giving up
// after MaxDecodeRetries draws.
func (c *Composer) drawBackground() (image.Image, string, error) {
	pool := c.catalog.Backgrounds
	if len(pool) == 0 {
		return nil, "", errors.New(errors.ErrCodeConfiguration, "empty background pool")
	}

	var lastErr error
	for attempt := 0; attempt < c.opts.MaxDecodeRetries; attempt++ {
		path := pool[c.rng.IntN(len(pool))]
		img, err := c.loader.Load(path)
		if err == nil {
			return img, path, nil
		}
		c.logger.Warn("unreadable background, drawing another", "path", path, "attempt", attempt+1, "err", err)
		lastErr = err
	}
	return nil, "", errors.Wrap(errors.ErrCodeRecoverableIO, lastErr,
		"no readable background after %d draws", c.opts.MaxDecodeRetries)
}

// fitBackground grows bg by UpscaleFactor, rounding up, until it covers an
// object of size obj in both axes.
func (c *Composer) fitBackground(bg image.Image, obj image.Point) (image.Image, error) {
	for step := 0; ; step++ {
		size := bg.Bounds().Size()
		if size.X >= obj.X && size.Y >= obj.Y {
			return bg, nil
		}
		if step == c.opts.MaxUpscaleSteps {
			return nil, errors.New(errors.ErrCodeGeometry,
				"background %dx%d still smaller than object %dx%d after %d upscales",
				size.X, size.Y, obj.X, obj.Y, step)
		}
		bg = transform.Grow(bg, c.opts.UpscaleFactor)
	}
}
