package debugdraw

import (
	"github.com/gogpu/debugdraw/gpucore"
)

// State is the lifecycle state of a LineRenderer.
type State uint8

// Renderer states.
const (
	// StateUninitialized means no GPU resources exist yet.
	StateUninitialized State = iota

	// StateReady means GPU resources exist and the current frame has not
	// been flushed.
	StateReady

	// StateFlushed means the current frame has been flushed.
	StateFlushed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateFlushed:
		return "Flushed"
	default:
		return "Unknown"
	}
}

// LineRenderer accumulates line segments during a frame and draws them with
// a single draw call when flushed.
//
// GPU resources are created on the first flush that has geometry. The
// renderer holds the device and resource cache but does not own them.
//
// LineRenderer is not safe for concurrent use.
type LineRenderer struct {
	device gpucore.Device
	rc     gpucore.ResourceCache
	opts   options

	vertices []Vertex
	scratch  []byte
	guard    FrameGuard

	res *lineResources
}

// NewLineRenderer creates a renderer drawing on device with resources from
// rc. No GPU resources are created until the first Flush with geometry.
func NewLineRenderer(device gpucore.Device, rc gpucore.ResourceCache, opts ...Option) (*LineRenderer, error) {
	if device == nil || rc == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	propagateLogger(device, Logger())
	return &LineRenderer{
		device:   device,
		rc:       rc,
		opts:     o,
		vertices: make([]Vertex, 0, o.initialCapacity),
	}, nil
}

// AddLine appends the segment v1-v2.
func (r *LineRenderer) AddLine(v1, v2 Vertex) {
	r.vertices = append(r.vertices, v1, v2)
}

// Len returns the number of pending vertices (twice the segment count).
func (r *LineRenderer) Len() int {
	return len(r.vertices)
}

// Vertices returns a copy of the pending vertices in draw order.
func (r *LineRenderer) Vertices() []Vertex {
	out := make([]Vertex, len(r.vertices))
	copy(out, r.vertices)
	return out
}

// ClearCache drops all pending geometry without drawing it.
func (r *LineRenderer) ClearCache() {
	r.vertices = r.vertices[:0]
}

// State returns the lifecycle state.
func (r *LineRenderer) State() State {
	if r.res == nil {
		return StateUninitialized
	}
	if last, ok := r.guard.Last(); ok && last == r.device.FrameCounter() {
		return StateFlushed
	}
	return StateReady
}

// LastFlushedFrame returns the frame of the last accepted flush, and false
// if the renderer never flushed.
func (r *LineRenderer) LastFlushedFrame() (uint64, bool) {
	return r.guard.Last()
}

// Destroy releases the GPU resources. Pending geometry and the frame guard
// are kept, so a later Flush re-creates the resources. Calling Destroy more
// than once is safe.
func (r *LineRenderer) Destroy() {
	if r.res == nil {
		return
	}
	r.res.release(r.rc)
	r.res = nil
	Logger().Debug("debugdraw: line renderer destroyed", "label", r.opts.label)
}

func (r *LineRenderer) label(name string) string {
	return r.opts.label + name
}
