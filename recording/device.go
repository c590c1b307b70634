package recording

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/debugdraw/gpucore"
)

// Errors returned by the recording device.
var (
	// ErrBufferTooSmall is returned when data larger than a static buffer is
	// uploaded to it.
	ErrBufferTooSmall = errors.New("recording: static buffer too small")

	// ErrDestroyed is returned when a destroyed object is used.
	ErrDestroyed = errors.New("recording: object destroyed")

	// ErrEmptyShader is returned for empty shader sources.
	ErrEmptyShader = errors.New("recording: empty shader source")

	// ErrUnknownQueue is returned when a draw is queued on a queue that was
	// not acquired in the current frame.
	ErrUnknownQueue = errors.New("recording: unknown render queue")

	// ErrForeignObject is returned when an object created by another device
	// is passed in.
	ErrForeignObject = errors.New("recording: object belongs to another device")
)

// Draw is one draw submitted in a frame, with a snapshot of the data it
// reads.
type Draw struct {
	Queue       string
	Pipeline    *PipelineState
	NumVertices uint32

	// Vertices is the content of vertex buffer slot 0 at submission.
	Vertices []byte

	// Constants is the content of the vertex-stage constant buffer in slot 0
	// at submission, or nil.
	Constants []byte
}

// Option configures a Device.
type Option func(*Device)

// WithShaderLanguage sets the language the device reports from
// ShaderLanguage. The default is WGSL.
func WithShaderLanguage(lang gpucore.ShaderLanguage) Option {
	return func(d *Device) {
		d.lang = lang
	}
}

// Device is a gpucore.Device that records every call.
//
// Device is not safe for concurrent use.
type Device struct {
	width, height uint32
	lang          gpucore.ShaderLanguage
	frame         uint64

	sm      *gpucore.StateMachine
	events  []Event
	faults  map[EventType]error
	shaders map[shaderKey]*Shader
	live    map[*Buffer]struct{}

	nextPipeline uint64
	queues       map[string]gpucore.RenderQueueID
	queueNames   []string
	pending      []Draw
	last         []Draw
}

var (
	_ gpucore.Device          = (*Device)(nil)
	_ gpucore.Allocator       = (*Device)(nil)
	_ gpucore.PipelineBuilder = (*Device)(nil)
)

// NewDevice creates a recording device with the given output resolution.
func NewDevice(width, height uint32, opts ...Option) *Device {
	d := &Device{
		width:   width,
		height:  height,
		lang:    gpucore.ShaderLanguageWGSL,
		faults:  make(map[EventType]error),
		shaders: make(map[shaderKey]*Shader),
		live:    make(map[*Buffer]struct{}),
		queues:  make(map[string]gpucore.RenderQueueID),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.sm = gpucore.NewStateMachine(d)
	return d
}

// SetLogger sets the logger used by the recording package.
func (d *Device) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// FrameCounter returns the current frame index.
func (d *Device) FrameCounter() uint64 { return d.frame }

// SetFrameCounter jumps to frame n without recording an EndFrame.
func (d *Device) SetFrameCounter(n uint64) { d.frame = n }

// OutputResolution returns the output size given to NewDevice.
func (d *Device) OutputResolution() (width, height uint32) {
	return d.width, d.height
}

// Resize changes the output resolution.
func (d *Device) Resize(width, height uint32) {
	d.width, d.height = width, height
}

// StateMachine returns the device state machine.
func (d *Device) StateMachine() *gpucore.StateMachine { return d.sm }

// ShaderLanguage returns the configured shader language.
func (d *Device) ShaderLanguage() gpucore.ShaderLanguage { return d.lang }

// Events returns a copy of the recorded events.
func (d *Device) Events() []Event {
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// Count returns the number of recorded events of type t.
func (d *Device) Count(t EventType) int {
	n := 0
	for _, ev := range d.events {
		if ev.Type() == t {
			n++
		}
	}
	return n
}

// ClearEvents drops the recorded events. Device state is kept.
func (d *Device) ClearEvents() {
	d.events = d.events[:0]
}

// FailNext makes the next call that would record an event of type t fail
// with err instead. Each call arms a single failure per type.
func (d *Device) FailNext(t EventType, err error) {
	d.faults[t] = err
}

// LiveBuffers returns the number of buffers created and not destroyed.
func (d *Device) LiveBuffers() int { return len(d.live) }

// Pending returns the draws queued in the current frame.
func (d *Device) Pending() []Draw {
	out := make([]Draw, len(d.pending))
	copy(out, d.pending)
	return out
}

// LastFrame returns the draws of the last finished frame.
func (d *Device) LastFrame() []Draw {
	out := make([]Draw, len(d.last))
	copy(out, d.last)
	return out
}

// CreateBuffer allocates an in-memory buffer.
func (d *Device) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.Buffer, error) {
	if err := d.takeFault(EvCreateBuffer); err != nil {
		return nil, err
	}
	size := max(desc.Size, uint64(len(desc.Data)))
	b := &Buffer{
		dev:      d,
		label:    desc.Label,
		usage:    desc.Usage,
		stride:   desc.Stride,
		dynamic:  desc.Dynamic,
		capacity: size,
		data:     append([]byte(nil), desc.Data...),
	}
	d.live[b] = struct{}{}
	d.record(CreateBuffer{
		Frame:   d.frame,
		Label:   desc.Label,
		Size:    size,
		Usage:   desc.Usage,
		Dynamic: desc.Dynamic,
	})
	return b, nil
}

// AcquireRenderQueue returns the ID of the named queue for this frame.
func (d *Device) AcquireRenderQueue(sorted bool, name string) gpucore.RenderQueueID {
	id, ok := d.queues[name]
	if !ok {
		d.queueNames = append(d.queueNames, name)
		id = gpucore.RenderQueueID(len(d.queueNames)) //nolint:gosec // G115: queue count is small
		d.queues[name] = id
	}
	d.record(AcquireQueue{Frame: d.frame, Name: name, Sorted: sorted, Queue: id})
	return id
}

// QueuePipelineState snapshots the vertex and constant data of ps and
// appends it to the current frame.
func (d *Device) QueuePipelineState(ps gpucore.PipelineState, q gpucore.RenderQueueID) error {
	if err := d.takeFault(EvQueuePipeline); err != nil {
		return err
	}
	p, ok := ps.(*PipelineState)
	if !ok || p.dev != d {
		return ErrForeignObject
	}
	if p.destroyed {
		return fmt.Errorf("%w: pipeline #%d", ErrDestroyed, p.id)
	}
	if q == gpucore.InvalidQueue || int(q) > len(d.queueNames) {
		return fmt.Errorf("%w: %d", ErrUnknownQueue, q)
	}
	name := d.queueNames[q-1]

	draw := Draw{Queue: name, Pipeline: p, NumVertices: p.desc.NumVertices}
	if vb, ok := p.desc.VertexBuffers[0].(*Buffer); ok {
		draw.Vertices = vb.Bytes()
	}
	if cb, ok := p.desc.ConstantBuffer(gpucore.ShaderStageVertex, 0).(*Buffer); ok {
		draw.Constants = cb.Bytes()
	}
	d.pending = append(d.pending, draw)
	d.record(QueuePipeline{Frame: d.frame, Queue: name, Pipeline: p.id, NumVertices: p.desc.NumVertices})
	return nil
}

// EndFrame finishes the frame: pending draws become LastFrame, queues are
// reset and the frame counter advances.
func (d *Device) EndFrame() {
	d.record(EndFrame{Frame: d.frame, Draws: len(d.pending)})
	d.last = d.pending
	d.pending = nil
	clear(d.queues)
	d.queueNames = d.queueNames[:0]
	d.frame++
}

func (d *Device) record(ev Event) {
	d.events = append(d.events, ev)
}

func (d *Device) takeFault(t EventType) error {
	err, ok := d.faults[t]
	if !ok {
		return nil
	}
	delete(d.faults, t)
	return err
}
