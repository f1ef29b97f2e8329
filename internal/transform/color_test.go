package transform

import (
	"image/color"
	"testing"
)

func TestAddChannels_Saturates(t *testing.T) {
	img := createInMemoryImage(4, 4, color.NRGBA{255, 255, 255, 255})

	out := AddChannels(img, 0, 128, 255)
	if got := out.NRGBAAt(1, 1); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("saturated pixel: got %v, want white", got)
	}
}

func TestAddChannels_Offsets(t *testing.T) {
	img := createInMemoryImage(4, 4, color.NRGBA{10, 100, 200, 255})

	out := AddChannels(img, -20, 50, 100)
	want := color.NRGBA{0, 150, 255, 255}
	if got := out.NRGBAAt(2, 2); got != want {
		t.Errorf("pixel: got %v, want %v", got, want)
	}
	if img.NRGBAAt(2, 2) != (color.NRGBA{10, 100, 200, 255}) {
		t.Error("AddChannels modified its input")
	}
}

func TestTint_NeverOverflows(t *testing.T) {
	p := DefaultParams()
	rng := newRand(12)
	img := createInMemoryImage(8, 8, color.NRGBA{255, 255, 255, 255})

	for i := 0; i < 50; i++ {
		out := p.Tint(rng, img)
		for j := 0; j < len(out.Pix); j += 4 {
			if out.Pix[j] != 255 || out.Pix[j+1] != 255 || out.Pix[j+2] != 255 {
				t.Fatalf("tinted max pixel changed: %v", out.Pix[j:j+4])
			}
		}
	}
}

func TestTint_BlueGreenCast(t *testing.T) {
	p := DefaultParams()
	rng := newRand(13)
	img := createInMemoryImage(4, 4, color.NRGBA{0, 0, 0, 255})

	for i := 0; i < 50; i++ {
		got := p.Tint(rng, img).NRGBAAt(0, 0)
		if got.R != 0 {
			t.Fatalf("red channel changed: %d", got.R)
		}
		if got.B < 128 || got.B > 255 {
			t.Fatalf("blue offset %d outside [128,255]", got.B)
		}
		if got.G > 128 {
			t.Fatalf("green offset %d outside [0,128]", got.G)
		}
	}
}

func TestGammaTable(t *testing.T) {
	for _, gamma := range []float64{0.3, 0.45, 0.5, 0.7} {
		table := GammaTable(gamma)
		if table[0] != 0 || table[255] != 255 {
			t.Errorf("gamma %v: endpoints %d,%d, want 0,255", gamma, table[0], table[255])
		}
		for i := 1; i < 256; i++ {
			if table[i] > uint8(i) {
				t.Fatalf("gamma %v: table[%d]=%d brightens", gamma, i, table[i])
			}
			if table[i] < table[i-1] {
				t.Fatalf("gamma %v: table not monotone at %d", gamma, i)
			}
		}
	}

	// gamma 0.5 squares the normalized value
	if got := GammaTable(0.5)[128]; got != 64 {
		t.Errorf("GammaTable(0.5)[128]: got %d, want 64", got)
	}
}

func TestDarken_NeverBrightens(t *testing.T) {
	p := DefaultParams()
	rng := newRand(21)
	img := createNoiseImage(rng, 32, 32)

	for i := 0; i < 20; i++ {
		out := p.Darken(rng, img)
		for j := 0; j < len(img.Pix); j += 4 {
			for ch := 0; ch < 3; ch++ {
				if out.Pix[j+ch] > img.Pix[j+ch] {
					t.Fatalf("channel %d at byte %d: %d > %d", ch, j, out.Pix[j+ch], img.Pix[j+ch])
				}
			}
			if out.Pix[j+3] != 255 {
				t.Fatalf("alpha changed at byte %d", j)
			}
		}
	}
}
