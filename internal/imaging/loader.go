package imaging

import (
	"container/list"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

// ImageCache keeps decoded images keyed by path, so a background drawn for
// many samples is decoded once.
//
// The cache holds at most limit images and drops the least recently used one
// when full; a limit of zero or less means unbounded. Concurrent loads of the
// same uncached path share a single decode. Failed decodes are not cached,
// which lets a redraw pick the file up again once it becomes readable.
//
// Images returned by Load are shared between callers and must not be drawn
// into.
//
//	cache := imaging.NewImageCache(64)
//	img, err := cache.Load("bkg/reef.jpg")
type ImageCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	recent  *list.List // front is most recently used
	limit   int
	stats   CacheStats

	decodes singleflight.Group
}

type cacheEntry struct {
	path string
	img  image.Image
}

// CacheStats counts cache outcomes since creation or the last Clear.
type CacheStats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
	Entries   int `json:"entries"`
}

// NewImageCache creates an empty cache holding at most limit images.
func NewImageCache(limit int) *ImageCache {
	return &ImageCache{
		entries: make(map[string]*list.Element),
		recent:  list.New(),
		limit:   limit,
	}
}

// Load returns the cached image for path, decoding it on a miss. Paths are
// used verbatim as keys; a relative and an absolute path to the same file are
// cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	if img, ok := c.lookup(path); ok {
		return img, nil
	}

	v, err, _ := c.decodes.Do(path, func() (any, error) {
		if img, ok := c.peek(path); ok {
			return img, nil
		}
		img, err := Open(path)
		if err != nil {
			return nil, err
		}
		c.store(path, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (c *ImageCache) lookup(path string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		c.recent.MoveToFront(el)
		c.stats.Hits++
		return el.Value.(*cacheEntry).img, true
	}
	c.stats.Misses++
	return nil, false
}

// peek checks for an entry stored by a decode that finished after lookup.
func (c *ImageCache) peek(path string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		return el.Value.(*cacheEntry).img, true
	}
	return nil, false
}

func (c *ImageCache) store(path string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		el.Value.(*cacheEntry).img = img
		c.recent.MoveToFront(el)
		return
	}
	c.entries[path] = c.recent.PushFront(&cacheEntry{path: path, img: img})
	for c.limit > 0 && c.recent.Len() > c.limit {
		oldest := c.recent.Back()
		c.recent.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).path)
		c.stats.Evictions++
	}
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *ImageCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Clear drops every cached image and resets the counters.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.recent.Init()
	c.stats = CacheStats{}
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		c.recent.Remove(el)
		delete(c.entries, path)
	}
}

// DiskLoader decodes every image from disk on each call.
type DiskLoader struct{}

// Load decodes the image at path.
func (DiskLoader) Load(path string) (image.Image, error) {
	return Open(path)
}

// Open decodes the PNG, JPEG or GIF file at path. Any alpha channel is
// dropped by Flatten.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return Flatten(img), nil
}

// Flatten makes every pixel of img opaque, keeping the stored colour of
// pixels that were transparent. Already opaque images are returned as is.
//
// Cutouts with a transparent margin therefore show their stored margin
// colour, usually black, which the transparency key can then remove.
func Flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// ImageInfo describes an image file on disk.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format comes from the file extension, not the file contents.
	Format string `json:"format"`

	// HasAlpha is true when the file's pixel format can carry alpha. The
	// alpha itself is dropped on decode; the transparency key decides what
	// shows through.
	HasAlpha bool `json:"has_alpha"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo decodes path through the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var hasAlpha bool
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	size := img.Bounds().Size()
	return &ImageInfo{
		Width:         size.X,
		Height:        size.Y,
		Format:        FormatFromExt(path),
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// FormatFromExt names the codec for a file extension, case-insensitively:
// "png", "jpeg", "gif" or "unknown".
func FormatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	}
	return "unknown"
}

// DimensionsResult is the pixel size of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions decodes path through the cache and returns its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	size := img.Bounds().Size()
	return &DimensionsResult{Width: size.X, Height: size.Y}, nil
}
