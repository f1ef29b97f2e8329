package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-maker/internal/composer"
	"github.com/ironsheep/image-maker/internal/imaging"
)

// DirSink writes <name>.jpg and <name>.txt into a directory.
type DirSink struct {
	dir     string
	quality int
}

// NewDirSink creates dir if needed and returns a sink writing into it.
func NewDirSink(dir string, quality int) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &DirSink{dir: dir, quality: quality}, nil
}

// Dir returns the output directory.
func (s *DirSink) Dir() string {
	return s.dir
}

// Write encodes the sample image as JPEG and writes its label. Negative
// samples get a zero-byte label file.
func (s *DirSink) Write(ctx context.Context, name string, sample *composer.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := filepath.Join(s.dir, name)
	if err := imaging.SaveJPEG(sample.Image, base+".jpg", s.quality); err != nil {
		return err
	}
	return imaging.WriteText(base+".txt", sample.Label())
}

// PoolSink hands writes to a bounded set of goroutines. The first failed
// write cancels the pool; later Writes return that error.
type PoolSink struct {
	next  Sink
	group *errgroup.Group
	ctx   context.Context
}

// NewPoolSink wraps next so that at most workers writes run at once.
func NewPoolSink(ctx context.Context, next Sink, workers int) *PoolSink {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(max(workers, 1))
	return &PoolSink{next: next, group: group, ctx: gctx}
}

// Write schedules the write, blocking while all workers are busy.
func (p *PoolSink) Write(_ context.Context, name string, s *composer.Sample) error {
	if p.ctx.Err() != nil {
		return context.Cause(p.ctx)
	}
	p.group.Go(func() error {
		return p.next.Write(p.ctx, name, s)
	})
	return nil
}

// Flush waits for scheduled writes and returns the first error.
func (p *PoolSink) Flush() error {
	return p.group.Wait()
}
