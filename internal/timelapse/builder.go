package timelapse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taiwx/humigrid/internal/interp"
	"github.com/taiwx/humigrid/internal/metrics"
	"github.com/taiwx/humigrid/internal/models"
	"github.com/taiwx/humigrid/internal/source"
)

const defaultWorkers = 4

// Options narrows a run to a date range and caps its length. Dates are
// inclusive YYYY-MM-DD strings; empty means unbounded.
type Options struct {
	StartDate string
	EndDate   string
	MaxFrames int
	Workers   int
}

// Builder drives the per-frame pipeline: list frames, fetch station
// readings, interpolate, collect. Frames are independent and processed by a
// bounded worker pool; the shared interpolator (grid spec plus mask) is
// immutable by construction, so no frame-level synchronization is needed.
type Builder struct {
	src source.Source
	it  *interp.Interpolator
	log *slog.Logger
}

func NewBuilder(src source.Source, it *interp.Interpolator, log *slog.Logger) *Builder {
	return &Builder{src: src, it: it, log: log}
}

// Run produces the frames for one timelapse build, ordered by time. Frames
// that cannot be interpolated or fetched are skipped with a warning naming
// the frame; only cancellation aborts the run.
func (b *Builder) Run(ctx context.Context, opts Options) ([]models.Frame, error) {
	dates, err := b.src.ListDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	if len(dates) == 0 {
		return nil, errors.New("no weather data found")
	}
	b.log.Info("dates available", "count", len(dates), "first", dates[0], "last", dates[len(dates)-1])

	dates = filterDates(dates, opts.StartDate, opts.EndDate)
	if len(dates) == 0 {
		return nil, errors.New("no data in the requested date range")
	}

	var refs []source.FrameRef
	for _, date := range dates {
		fr, err := b.src.ListFrames(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("list frames for %s: %w", date, err)
		}
		refs = append(refs, fr...)
	}
	slices.SortFunc(refs, func(a, c source.FrameRef) int {
		return strings.Compare(a.Time, c.Time)
	})

	if opts.MaxFrames > 0 && len(refs) > opts.MaxFrames {
		b.log.Info("limiting to most recent frames", "max", opts.MaxFrames, "found", len(refs))
		refs = refs[len(refs)-opts.MaxFrames:]
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	b.log.Info("processing frames", "count", len(refs), "workers", workers)

	results := make([]*models.Frame, len(refs))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frame, err := b.processFrame(ctx, ref)
			if err != nil {
				// Bad input data for one frame never aborts the run.
				if errors.Is(err, interp.ErrInsufficientStations) {
					metrics.FramesProcessed.WithLabelValues("skipped").Inc()
				} else {
					metrics.FramesProcessed.WithLabelValues("failed").Inc()
				}
				b.log.Warn("skipping frame", "time", ref.Time, "key", ref.Key, "error", err)
				return nil
			}
			results[i] = frame
			metrics.FramesProcessed.WithLabelValues("ok").Inc()
			if n := done.Add(1); n == 1 || n%10 == 0 {
				b.log.Info("progress", "done", n, "total", len(refs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	frames := make([]models.Frame, 0, len(results))
	for _, f := range results {
		if f != nil {
			frames = append(frames, *f)
		}
	}
	b.log.Info("frames processed", "ok", len(frames), "skipped", len(refs)-len(frames))
	return frames, nil
}

func (b *Builder) processFrame(ctx context.Context, ref source.FrameRef) (*models.Frame, error) {
	stations, err := b.src.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	res, err := b.it.Frame(stations)
	if err != nil {
		return nil, err
	}
	metrics.InterpolationMethods.WithLabelValues(res.Method).Inc()
	if res.Method != interp.MethodCubic {
		b.log.Debug("smooth interpolation fell back", "time", ref.Time, "method", res.Method)
	}

	return &models.Frame{Time: ref.Time, Stats: res.Stats, Data: res.Grid}, nil
}

// filterDates keeps dates within [start, end]; empty bounds are open.
// Inclusive string comparison works because dates are zero-padded.
func filterDates(dates []string, start, end string) []string {
	out := dates[:0:len(dates)]
	for _, d := range dates {
		if start != "" && d < start {
			continue
		}
		if end != "" && d > end {
			continue
		}
		out = append(out, d)
	}
	return out
}
