package batch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ironsheep/image-maker/internal/catalog"
	"github.com/ironsheep/image-maker/internal/composer"
	"github.com/ironsheep/image-maker/internal/config"
	"github.com/ironsheep/image-maker/internal/errors"
	"github.com/ironsheep/image-maker/internal/geometry"
	"github.com/ironsheep/image-maker/internal/imaging"
	"github.com/ironsheep/image-maker/internal/transform"
)

// createTestImage writes a uniform PNG and returns its path
func createTestImage(t *testing.T, path string, width, height int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{})
}

// memorySink records samples by name.
type memorySink struct {
	mu      sync.Mutex
	names   []string
	samples map[string]*composer.Sample
}

func newMemorySink() *memorySink {
	return &memorySink{samples: map[string]*composer.Sample{}}
}

func (m *memorySink) Write(_ context.Context, name string, s *composer.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	m.samples[name] = s
	return nil
}

// stubGenerator returns fixed-size samples without touching images on disk.
type stubGenerator struct {
	failAt int
	calls  int
}

func (g *stubGenerator) next() error {
	g.calls++
	if g.failAt > 0 && g.calls == g.failAt {
		return errors.New(errors.ErrCodeRecoverableIO, "stub failure at call %d", g.calls)
	}
	return nil
}

func (g *stubGenerator) Compose(_ context.Context, obj catalog.Object) (*composer.Sample, error) {
	if err := g.next(); err != nil {
		return nil, err
	}
	box := geometry.NewBox(geometry.Placement{}, image.Pt(1, 1), image.Pt(4, 4))
	return &composer.Sample{Image: image.NewNRGBA(image.Rect(0, 0, 4, 4)), Class: obj.Class, Box: &box}, nil
}

func (g *stubGenerator) Negative(_ context.Context, slot int) (*composer.Sample, error) {
	if err := g.next(); err != nil {
		return nil, err
	}
	return &composer.Sample{Image: image.NewNRGBA(image.Rect(0, 0, 4, 4)), Class: slot}, nil
}

func mustCatalog(t *testing.T, classes int) *catalog.Catalog {
	t.Helper()
	var names []string
	for i := 0; i < classes; i++ {
		names = append(names, fmt.Sprintf("%d.png", i))
	}
	cat, err := catalog.New("obj", names, "bkg", []string{"a.png"})
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	return cat
}

func TestValidateCounts(t *testing.T) {
	tests := []struct {
		name       string
		counts     []int
		numClasses int
		wantErr    bool
	}{
		{"exact", []int{3, 0, 2}, 2, false},
		{"all zero", []int{0, 0}, 1, false},
		{"missing negatives", []int{3, 2}, 2, true},
		{"too many", []int{1, 1, 1, 1}, 2, true},
		{"empty", nil, 1, true},
		{"negative count", []int{1, -1}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCounts(tt.counts, tt.numClasses)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeConfiguration) {
					t.Errorf("expected CONFIGURATION error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGenerate_Order(t *testing.T) {
	cat := mustCatalog(t, 2)
	sink := newMemorySink()
	d := NewDriver(cat, &stubGenerator{}, quietLogger())

	summary, err := d.Generate(context.Background(), []int{2, 1, 2}, sink)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []string{"0_0", "0_1", "1_0", "2_0", "2_1"}
	if !slices.Equal(sink.names, want) {
		t.Errorf("names = %v, want %v", sink.names, want)
	}
	if !slices.Equal(summary.PerClass, []int{2, 1, 2}) {
		t.Errorf("PerClass = %v", summary.PerClass)
	}
	if summary.Total != 5 || summary.Negatives() != 2 {
		t.Errorf("Total/Negatives = %d/%d, want 5/2", summary.Total, summary.Negatives())
	}
	for _, name := range []string{"2_0", "2_1"} {
		if !sink.samples[name].Negative() {
			t.Errorf("%s should be a negative sample", name)
		}
	}
}

func TestGenerate_CountContractWritesNothing(t *testing.T) {
	cat := mustCatalog(t, 2)
	gen := &stubGenerator{}
	sink := newMemorySink()
	d := NewDriver(cat, gen, quietLogger())

	_, err := d.Generate(context.Background(), []int{5, 5}, sink)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION error, got %v", err)
	}
	if gen.calls != 0 || len(sink.names) != 0 {
		t.Errorf("generator calls = %d, writes = %d, want none", gen.calls, len(sink.names))
	}
}

func TestGenerate_StopsOnSampleError(t *testing.T) {
	cat := mustCatalog(t, 1)
	sink := newMemorySink()
	d := NewDriver(cat, &stubGenerator{failAt: 3}, quietLogger())

	_, err := d.Generate(context.Background(), []int{5, 0}, sink)
	if !errors.Is(err, errors.ErrCodeRecoverableIO) {
		t.Fatalf("expected RECOVERABLE_IO error, got %v", err)
	}
	if len(sink.names) != 2 {
		t.Errorf("writes = %d, want 2", len(sink.names))
	}
}

// failingSink fails every write.
type failingSink struct{}

func (failingSink) Write(context.Context, string, *composer.Sample) error {
	return fmt.Errorf("disk full")
}

func TestPoolSink_PropagatesWriteError(t *testing.T) {
	cat := mustCatalog(t, 1)
	pool := NewPoolSink(context.Background(), failingSink{}, 2)
	d := NewDriver(cat, &stubGenerator{}, quietLogger())

	_, err := d.Generate(context.Background(), []int{20, 0}, pool)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected disk full error, got %v", err)
	}
}

func TestPoolSink_WritesEverything(t *testing.T) {
	cat := mustCatalog(t, 3)
	mem := newMemorySink()
	pool := NewPoolSink(context.Background(), mem, 4)
	d := NewDriver(cat, &stubGenerator{}, quietLogger())

	if _, err := d.Generate(context.Background(), []int{10, 10, 10, 5}, pool); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(mem.names) != 35 {
		t.Errorf("writes = %d, want 35", len(mem.names))
	}
}

func TestGenerate_EndToEnd(t *testing.T) {
	root := t.TempDir()
	objDir := filepath.Join(root, "obj")
	bkgDir := filepath.Join(root, "bkg")
	outDir := filepath.Join(root, "save")
	createTestImage(t, filepath.Join(objDir, "0.png"), 50, 50, color.NRGBA{255, 0, 0, 255})
	createTestImage(t, filepath.Join(bkgDir, "sea.png"), 200, 200, color.NRGBA{0, 0, 255, 255})

	cat, err := catalog.Load(objDir, bkgDir)
	if err != nil {
		t.Fatalf("catalog.Load failed: %v", err)
	}
	opts := composer.DefaultOptions()
	opts.Enabled = composer.Toggles{}
	rng := rand.New(rand.NewPCG(9, 9^0xdeadbeef))
	comp, err := composer.New(cat, imaging.NewImageCache(0), rng, opts, transform.DefaultParams(), quietLogger())
	if err != nil {
		t.Fatalf("composer.New failed: %v", err)
	}
	dir, err := NewDirSink(outDir, 95)
	if err != nil {
		t.Fatalf("NewDirSink failed: %v", err)
	}

	d := NewDriver(cat, comp, quietLogger())
	summary, err := d.Generate(context.Background(), []int{2, 1}, NewPoolSink(context.Background(), dir, 2))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}

	for _, name := range []string{"0_0", "0_1"} {
		label, err := os.ReadFile(filepath.Join(outDir, name+".txt"))
		if err != nil {
			t.Fatalf("missing label %s: %v", name, err)
		}
		fields := strings.Fields(string(label))
		if len(fields) != 5 || fields[0] != "0" || fields[3] != "0.25" || fields[4] != "0.25" {
			t.Errorf("%s label = %q", name, label)
		}
		img, err := imaging.Open(filepath.Join(outDir, name+".jpg"))
		if err != nil {
			t.Fatalf("failed to decode %s.jpg: %v", name, err)
		}
		if got := img.Bounds().Size(); got != image.Pt(200, 200) {
			t.Errorf("%s.jpg size = %v", name, got)
		}
	}

	info, err := os.Stat(filepath.Join(outDir, "1_0.txt"))
	if err != nil {
		t.Fatalf("missing negative label: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("negative label size = %d, want 0", info.Size())
	}
	if _, err := os.Stat(filepath.Join(outDir, "1_0.jpg")); err != nil {
		t.Errorf("missing negative image: %v", err)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 6 {
		t.Errorf("output has %d files, want 6", len(entries))
	}
}

func TestGenerate_BadCountsLeaveOutputEmpty(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "save")
	dir, err := NewDirSink(outDir, 95)
	if err != nil {
		t.Fatalf("NewDirSink failed: %v", err)
	}
	d := NewDriver(mustCatalog(t, 1), &stubGenerator{}, quietLogger())

	if _, err := d.Generate(context.Background(), []int{1, 1, 1}, dir); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION error, got %v", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("output has %d files, want 0", len(entries))
	}
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	cat := mustCatalog(t, 2)
	m := NewManifest(77, "obj", "bkg", cat, []int{1, 2, 3}, []string{"resize", "flip"})
	m.Finish(&Summary{PerClass: []int{1, 2, 3}, Total: 6})

	if err := WriteManifest(dir, m); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	got, err := ReadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if _, err := uuid.Parse(got.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", got.RunID, err)
	}
	if got.Seed != 77 || !slices.Equal(got.Counts, []int{1, 2, 3}) {
		t.Errorf("Seed/Counts = %d/%v", got.Seed, got.Counts)
	}
	if len(got.Classes) != 2 || got.Classes[1].Path != filepath.Join("obj", "1.png") {
		t.Errorf("Classes = %+v", got.Classes)
	}
	if got.Summary == nil || got.Summary.Total != 6 {
		t.Errorf("Summary = %+v", got.Summary)
	}
	if got.FinishedAt.Before(got.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}
}

func TestManifest_FreshRunIDs(t *testing.T) {
	cat := mustCatalog(t, 1)
	a := NewManifest(1, "obj", "bkg", cat, []int{1, 0}, nil)
	b := NewManifest(1, "obj", "bkg", cat, []int{1, 0}, nil)
	if a.RunID == b.RunID {
		t.Error("two manifests share a run id")
	}
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	createTestImage(t, filepath.Join(root, "obj", "0.png"), 20, 20, color.NRGBA{255, 0, 0, 255})
	createTestImage(t, filepath.Join(root, "obj", "1.png"), 30, 10, color.NRGBA{0, 255, 0, 255})
	createTestImage(t, filepath.Join(root, "bkg", "a.png"), 120, 90, color.NRGBA{0, 0, 255, 255})

	cfg := config.Default()
	cfg.ObjDir = filepath.Join(root, "obj")
	cfg.BkgDir = filepath.Join(root, "bkg")
	cfg.OutDir = filepath.Join(root, "out", "nested")
	cfg.Seed = 11
	cfg.Transform.BlurKernel = transform.Range{Min: 2, Max: 4}

	m, err := Run(context.Background(), Job{Config: cfg, Counts: []int{2, 1, 1}}, quietLogger())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if m.Seed != 11 || m.Summary.Total != 4 {
		t.Errorf("Seed/Total = %d/%d, want 11/4", m.Seed, m.Summary.Total)
	}
	for _, name := range []string{"0_0", "0_1", "1_0", "2_0", ManifestName} {
		path := filepath.Join(cfg.OutDir, name)
		if name != ManifestName {
			path += ".jpg"
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}

	label, err := os.ReadFile(filepath.Join(cfg.OutDir, "1_0.txt"))
	if err != nil {
		t.Fatalf("missing label: %v", err)
	}
	if !strings.HasPrefix(string(label), "1 ") {
		t.Errorf("1_0 label = %q", label)
	}
}

func TestRun_SameSeedSameLabels(t *testing.T) {
	root := t.TempDir()
	createTestImage(t, filepath.Join(root, "obj", "0.png"), 20, 20, color.NRGBA{255, 0, 0, 255})
	createTestImage(t, filepath.Join(root, "bkg", "a.png"), 100, 100, color.NRGBA{0, 0, 255, 255})
	createTestImage(t, filepath.Join(root, "bkg", "b.png"), 80, 60, color.NRGBA{0, 0, 128, 255})

	labels := func(out string) []string {
		cfg := config.Default()
		cfg.ObjDir = filepath.Join(root, "obj")
		cfg.BkgDir = filepath.Join(root, "bkg")
		cfg.OutDir = filepath.Join(root, out)
		cfg.Seed = 2024
		cfg.Transform.BlurKernel = transform.Range{Min: 2, Max: 4}
		if _, err := Run(context.Background(), Job{Config: cfg, Counts: []int{5, 0}}, quietLogger()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		var out []string
		for j := 0; j < 5; j++ {
			data, err := os.ReadFile(filepath.Join(cfg.OutDir, SampleName(0, j)+".txt"))
			if err != nil {
				t.Fatalf("missing label: %v", err)
			}
			out = append(out, string(data))
		}
		return out
	}

	if a, b := labels("run1"), labels("run2"); !slices.Equal(a, b) {
		t.Errorf("labels differ between runs with the same seed:\n%v\n%v", a, b)
	}
}

func TestRun_BadCountsCreateNothing(t *testing.T) {
	root := t.TempDir()
	createTestImage(t, filepath.Join(root, "obj", "0.png"), 20, 20, color.NRGBA{255, 0, 0, 255})
	createTestImage(t, filepath.Join(root, "bkg", "a.png"), 100, 100, color.NRGBA{0, 0, 255, 255})

	cfg := config.Default()
	cfg.ObjDir = filepath.Join(root, "obj")
	cfg.BkgDir = filepath.Join(root, "bkg")
	cfg.OutDir = filepath.Join(root, "save")

	_, err := Run(context.Background(), Job{Config: cfg, Counts: []int{3}}, quietLogger())
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION error, got %v", err)
	}
	if _, err := os.Stat(cfg.OutDir); !os.IsNotExist(err) {
		t.Errorf("output directory should not exist, stat err = %v", err)
	}
}
