package debugdraw

import "errors"

// Sentinel errors returned by LineRenderer.
var (
	// ErrNilDevice is returned by NewLineRenderer when the device or the
	// resource cache is nil.
	ErrNilDevice = errors.New("debugdraw: nil device or resource cache")

	// ErrAlreadyFlushed is returned by Flush when the renderer was already
	// flushed in the current frame. Pending geometry is kept.
	ErrAlreadyFlushed = errors.New("debugdraw: line renderer already flushed this frame")

	// ErrInitFailed wraps failures while creating the GPU resource set.
	ErrInitFailed = errors.New("debugdraw: GPU resource initialization failed")

	// ErrSubmitFailed wraps failures while uploading geometry, rebuilding the
	// pipeline state or enqueueing it.
	ErrSubmitFailed = errors.New("debugdraw: line submission failed")

	// ErrInvalidSegmentCount is returned by AddRingZ for fewer than 2 segments.
	ErrInvalidSegmentCount = errors.New("debugdraw: ring needs at least 2 segments")

	// ErrDegeneratePlane is returned by AddPlane when the plane normal has
	// zero length.
	ErrDegeneratePlane = errors.New("debugdraw: plane normal has zero length")
)
