package imaging

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveJPEG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0_0.jpg")

	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 255, 255
	}

	if err := SaveJPEG(img, path, 90); err != nil {
		t.Fatalf("SaveJPEG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 40 || decoded.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}

	r, g, b, _ := decoded.At(20, 15).RGBA()
	if r>>8 > 10 || g>>8 > 10 || b>>8 < 240 {
		t.Errorf("center color: got (%d,%d,%d), want near (0,0,255)", r>>8, g>>8, b>>8)
	}
}

func TestSaveJPEG_QualityFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.jpg")
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.NRGBA{255, 255, 255, 255})

	for _, q := range []int{0, -5, 101} {
		if err := SaveJPEG(img, path, q); err != nil {
			t.Errorf("SaveJPEG with quality %d failed: %v", q, err)
		}
	}
}

func TestSaveJPEG_BadDirectory(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	err := SaveJPEG(img, filepath.Join(t.TempDir(), "missing", "x.jpg"), 90)
	if err == nil {
		t.Error("SaveJPEG should fail when the directory does not exist")
	}
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		text string
	}{
		{"label", "0 0.5 0.5 0.25 0.25"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".txt")
			if err := WriteText(path, tt.text); err != nil {
				t.Fatalf("WriteText failed: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if string(data) != tt.text {
				t.Errorf("content: got %q, want %q", data, tt.text)
			}
		})
	}
}
