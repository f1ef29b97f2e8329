// Package config assembles the settings of a generation run.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults (Default)
//  2. an optional TOML file
//  3. IMAGE_MAKER_* environment variables
//  4. command-line flags, applied by the caller
//
// A TOML file may only name known keys; anything else is rejected so that a
// typo cannot silently fall back to a default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/image-maker/internal/composer"
	"github.com/ironsheep/image-maker/internal/errors"
	"github.com/ironsheep/image-maker/internal/imaging"
	"github.com/ironsheep/image-maker/internal/transform"
)

// Environment variables read by Load.
const (
	EnvObjDir  = "IMAGE_MAKER_OBJ_DIR"
	EnvBkgDir  = "IMAGE_MAKER_BKG_DIR"
	EnvOutDir  = "IMAGE_MAKER_OUT_DIR"
	EnvSeed    = "IMAGE_MAKER_SEED"
	EnvWorkers = "IMAGE_MAKER_WORKERS"
)

// Config is the full configuration of one run.
type Config struct {
	ObjDir string `toml:"obj_dir"`
	BkgDir string `toml:"bkg_dir"`
	OutDir string `toml:"out_dir"`

	// Seed drives every random decision. Zero means seed from the clock.
	Seed uint64 `toml:"seed"`

	JPEGQuality int  `toml:"jpeg_quality"`
	Workers     int  `toml:"workers"`
	CacheImages bool `toml:"cache_images"`

	// CacheSize caps the decoded images kept in memory; 0 is unbounded.
	CacheSize int `toml:"cache_size"`

	Compose   composer.Options `toml:"compose"`
	Transform transform.Params `toml:"transform"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		ObjDir:      "obj",
		BkgDir:      "bkg",
		OutDir:      "save",
		JPEGQuality: imaging.DefaultJPEGQuality,
		Workers:     4,
		CacheImages: true,
		CacheSize:   64,
		Compose:     composer.DefaultOptions(),
		Transform:   transform.DefaultParams(),
	}
}

// Load builds a configuration from defaults, the TOML file at path (skipped
// when path is empty) and the environment as read through getenv. A nil
// getenv reads the process environment. The result is validated.
func Load(path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "failed to read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeConfiguration, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	c.ObjDir = getEnv(getenv, EnvObjDir, c.ObjDir)
	c.BkgDir = getEnv(getenv, EnvBkgDir, c.BkgDir)
	c.OutDir = getEnv(getenv, EnvOutDir, c.OutDir)

	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "invalid %s", EnvSeed)
		}
		c.Seed = seed
	}
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "invalid %s", EnvWorkers)
		}
		c.Workers = n
	}
	return nil
}

func getEnv(getenv func(string) string, key, defaultVal string) string {
	if val := getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Validate reports the first invalid setting as a configuration error.
func (c Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "invalid configuration")
	}
	return nil
}

func (c Config) validate() error {
	dirs := []struct{ name, dir string }{
		{"obj_dir", c.ObjDir},
		{"bkg_dir", c.BkgDir},
		{"out_dir", c.OutDir},
	}
	for _, d := range dirs {
		if d.dir == "" {
			return fmt.Errorf("%s must not be empty", d.name)
		}
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality %d outside [1,100]", c.JPEGQuality)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if err := c.Compose.Validate(); err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	if err := c.Transform.Validate(); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	return nil
}
