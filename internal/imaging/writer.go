package imaging

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when the caller passes a quality outside 1-100.
const DefaultJPEGQuality = 95

// SaveJPEG encodes img as a JPEG file at path.
func SaveJPEG(img image.Image, path string, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode image %s: %w", path, err)
	}
	return nil
}

// WriteText writes text to path, replacing any existing file. An empty string
// produces a zero-byte file.
func WriteText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
