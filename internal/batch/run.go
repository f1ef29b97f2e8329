package batch

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/image-maker/internal/catalog"
	"github.com/ironsheep/image-maker/internal/composer"
	"github.com/ironsheep/image-maker/internal/config"
	"github.com/ironsheep/image-maker/internal/imaging"
)

// Job is one complete generation run.
type Job struct {
	Config config.Config
	Counts []int

	// Cache is reused across jobs when set and Config.CacheImages is on.
	Cache *imaging.ImageCache
}

// NewRand returns the PCG stream every random decision of a run draws from.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Run loads the catalog, validates the counts, generates every sample into
// the output directory and writes the manifest there. Nothing is written when
// the catalog or counts are invalid.
func Run(ctx context.Context, job Job, logger *log.Logger) (*Manifest, error) {
	cfg := job.Config
	if logger == nil {
		logger = log.Default()
	}

	cat, err := catalog.Load(cfg.ObjDir, cfg.BkgDir)
	if err != nil {
		return nil, err
	}
	if err := ValidateCounts(job.Counts, cat.NumClasses()); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var loader composer.Loader = imaging.DiskLoader{}
	cache := job.Cache
	if cfg.CacheImages {
		if cache == nil {
			cache = imaging.NewImageCache(cfg.CacheSize)
		}
		loader = cache
	}

	comp, err := composer.New(cat, loader, NewRand(seed), cfg.Compose, cfg.Transform, logger)
	if err != nil {
		return nil, err
	}
	dir, err := NewDirSink(cfg.OutDir, cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}

	m := NewManifest(seed, cfg.ObjDir, cfg.BkgDir, cat, job.Counts, cfg.Compose.Enabled.Names())
	m.TransparentKey = comp.TransparentKey()
	logger.Info("generating", "run", m.RunID, "seed", seed, "classes", cat.NumClasses(), "out", cfg.OutDir)

	summary, err := NewDriver(cat, comp, logger).Generate(ctx, job.Counts, NewPoolSink(ctx, dir, cfg.Workers))
	if err != nil {
		return nil, err
	}

	m.Finish(summary)
	if cfg.CacheImages {
		st := cache.Stats()
		logger.Debug("image cache", "hits", st.Hits, "misses", st.Misses, "evictions", st.Evictions, "entries", st.Entries)
	}
	if err := WriteManifest(cfg.OutDir, m); err != nil {
		return nil, err
	}
	return m, nil
}
