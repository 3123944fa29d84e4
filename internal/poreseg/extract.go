package poreseg

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// Options controls Extract.
type Options struct {
	// Sigma is the LabelSmoother standard deviation; <= 0 disables smoothing.
	// It must be finite.
	Sigma float64
	// Workers is the LabelSmoother goroutine count; must be at least 1.
	Workers int
	// Strict turns a mask without pore voxels into ErrInvalidInput instead of
	// an all-zero result.
	Strict bool
}

// DefaultOptions returns Options with smoothing off, one worker per CPU and
// strict validation off.
func DefaultOptions() Options {
	return Options{
		Sigma:   0,
		Workers: runtime.NumCPU(),
		Strict:  false,
	}
}

// Result is the output of Extract.
type Result struct {
	// Labels is the final pore-body segmentation, same shape as the mask.
	Labels *voxel.Labels
	// Hierarchy is the maximal-sphere forest the labels were seeded from.
	// Nil when the mask has no pore voxels.
	Hierarchy *Hierarchy

	Peaks         int // block maxima found
	MedialSurface int // spheres surviving pruning
	Bodies        int // labels minted
}

// Extract runs the full pipeline on a pore mask: distance field, peak search,
// medial-surface pruning, sphere hierarchy, rasterization, label expansion and
// smoothing.
//
// Stages are not interruptible; ctx is checked between stages and its error is
// returned if it is done.
func Extract(ctx context.Context, mask *voxel.Mask, opts Options) (*Result, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("%w: %d workers", ErrInvalidInput, opts.Workers)
	}
	if err := checkSigma(opts.Sigma); err != nil {
		return nil, err
	}
	if !mask.Valid() || len(mask.Data) != mask.Len() {
		return nil, fmt.Errorf("%w: %d values for %s mask", ErrInvalidInput, len(mask.Data), mask.Dims)
	}
	pores := voxel.Count(mask)
	if pores == 0 {
		if opts.Strict {
			return nil, fmt.Errorf("%w: mask has no pore voxels", ErrInvalidInput)
		}
		diagf("extract: %s mask has no pore voxels", mask.Dims)
		return &Result{Labels: voxel.NewGrid[int32](mask.Dims)}, nil
	}
	diagf("extract: %s mask, %s pore voxels", mask.Dims, humanize.Comma(int64(pores)))

	res := &Result{}
	st := newStageTimer()

	field, err := DistanceField(mask)
	if err != nil {
		return nil, err
	}
	if err := st.done(ctx, "distance field"); err != nil {
		return nil, err
	}

	work, peaks := ExtractPeaks(field)
	res.Peaks = len(peaks)
	if err := st.done(ctx, "peaks"); err != nil {
		return nil, err
	}

	ms, err := BuildMedialSurface(work, peaks)
	if err != nil {
		return nil, err
	}
	res.MedialSurface = ms.Len()
	if err := st.done(ctx, "medial surface"); err != nil {
		return nil, err
	}

	h, err := BuildHierarchy(ms)
	if err != nil {
		return nil, err
	}
	res.Hierarchy = h
	res.Bodies = int(h.Labels)
	if err := st.done(ctx, "hierarchy"); err != nil {
		return nil, err
	}

	seeds := Rasterize(h)
	if err := st.done(ctx, "rasterize"); err != nil {
		return nil, err
	}

	expanded, err := ExpandLabels(seeds, mask)
	if err != nil {
		return nil, err
	}
	if err := st.done(ctx, "expand"); err != nil {
		return nil, err
	}

	res.Labels, err = SmoothLabels(expanded, opts.Sigma, opts.Workers)
	if err != nil {
		return nil, err
	}
	diagf("extract: %s peaks, %s medial spheres, %d bodies",
		humanize.Comma(int64(res.Peaks)), humanize.Comma(int64(res.MedialSurface)), res.Bodies)
	return res, st.done(ctx, "smooth")
}

// NewMask validates raw 0/1 voxel values into a mask. A value other than 0
// or 1 is ErrInvalidInput naming the voxel.
func NewMask(dims voxel.Dims, values []uint8) (*voxel.Mask, error) {
	m, err := voxel.MaskFromValues(dims, values)
	if err != nil {
		var ve *voxel.ValueError
		if errors.As(err, &ve) {
			return nil, regionErr(ErrInvalidInput, ve.Voxel, "mask value %d is not binary", ve.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return m, nil
}

// stageTimer logs per-stage durations and checks for cancellation.
type stageTimer struct {
	last time.Time
}

func newStageTimer() *stageTimer { return &stageTimer{last: time.Now()} }

func (s *stageTimer) done(ctx context.Context, stage string) error {
	now := time.Now()
	diagf("extract: %s took %v", stage, now.Sub(s.last))
	s.last = now
	return ctx.Err()
}
