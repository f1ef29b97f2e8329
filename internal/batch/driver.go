// Package batch drives a generation run.
//
// A run takes one count per object class plus a trailing count of negative
// samples. Counts are validated before anything is generated or written.
// Samples are produced one after another from a single Generator, so a
// seeded run always yields the same images; only persistence may fan out
// across goroutines (see PoolSink).
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/image-maker/internal/catalog"
	"github.com/ironsheep/image-maker/internal/composer"
	"github.com/ironsheep/image-maker/internal/errors"
)

// Generator produces individual samples. *composer.Composer implements it.
type Generator interface {
	Compose(ctx context.Context, obj catalog.Object) (*composer.Sample, error)
	Negative(ctx context.Context, slot int) (*composer.Sample, error)
}

// Sink persists a sample under a base name.
type Sink interface {
	Write(ctx context.Context, name string, s *composer.Sample) error
}

// Flusher is implemented by sinks that finish writes asynchronously.
type Flusher interface {
	Flush() error
}

// Summary counts what a run produced.
type Summary struct {
	// PerClass has one entry per class plus a trailing entry for negatives.
	PerClass []int         `json:"per_class"`
	Total    int           `json:"total"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Negatives returns the number of negative samples written.
func (s *Summary) Negatives() int {
	if len(s.PerClass) == 0 {
		return 0
	}
	return s.PerClass[len(s.PerClass)-1]
}

// ValidateCounts checks the per-class count contract: exactly numClasses+1
// non-negative entries.
func ValidateCounts(counts []int, numClasses int) error {
	if len(counts) != numClasses+1 {
		return errors.New(errors.ErrCodeConfiguration,
			"expected %d counts (%d classes + negatives), got %d", numClasses+1, numClasses, len(counts))
	}
	for i, n := range counts {
		if n < 0 {
			return errors.New(errors.ErrCodeConfiguration, "count %d is negative: %d", i, n)
		}
	}
	return nil
}

// SampleName is the shared base name of a sample's image and label files.
func SampleName(class, index int) string {
	return fmt.Sprintf("%d_%d", class, index)
}

// Driver runs the per-class loops of a generation run.
type Driver struct {
	catalog *catalog.Catalog
	gen     Generator
	logger  *log.Logger
}

// NewDriver creates a driver over cat using gen to build samples.
func NewDriver(cat *catalog.Catalog, gen Generator, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{catalog: cat, gen: gen, logger: logger}
}

// Generate produces counts[i] samples of class i and counts[len-1] negative
// samples, handing each to sink as it is made. If sink is a Flusher it is
// flushed before Generate returns, also on failure.
func (d *Driver) Generate(ctx context.Context, counts []int, sink Sink) (summary *Summary, err error) {
	numClasses := d.catalog.NumClasses()
	if err := ValidateCounts(counts, numClasses); err != nil {
		return nil, err
	}

	start := time.Now()
	summary = &Summary{PerClass: make([]int, len(counts))}

	if f, ok := sink.(Flusher); ok {
		defer func() {
			if ferr := f.Flush(); ferr != nil && err == nil {
				err = ferr
			}
			summary.Elapsed = time.Since(start)
		}()
	}

	for _, obj := range d.catalog.Objects {
		for j := 0; j < counts[obj.Class]; j++ {
			s, err := d.gen.Compose(ctx, obj)
			if err != nil {
				return summary, fmt.Errorf("failed to compose %s: %w", SampleName(obj.Class, j), err)
			}
			if err := d.write(ctx, sink, SampleName(obj.Class, j), s, summary); err != nil {
				return summary, err
			}
		}
		if counts[obj.Class] > 0 {
			d.logger.Info("class done", "class", obj.Class, "object", obj.Path, "samples", counts[obj.Class])
		}
	}

	for j := 0; j < counts[numClasses]; j++ {
		s, err := d.gen.Negative(ctx, numClasses)
		if err != nil {
			return summary, fmt.Errorf("failed to draw %s: %w", SampleName(numClasses, j), err)
		}
		if err := d.write(ctx, sink, SampleName(numClasses, j), s, summary); err != nil {
			return summary, err
		}
	}
	if counts[numClasses] > 0 {
		d.logger.Info("negatives done", "samples", counts[numClasses])
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}

func (d *Driver) write(ctx context.Context, sink Sink, name string, s *composer.Sample, summary *Summary) error {
	if err := sink.Write(ctx, name, s); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	summary.PerClass[s.Class]++
	summary.Total++
	return nil
}
