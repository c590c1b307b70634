package recording

import (
	"fmt"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
)

// EventType identifies the kind of a recorded event.
type EventType uint8

const (
	// Resource events
	EvCreateBuffer      EventType = iota // Buffer allocated
	EvUpdateBuffer                       // Buffer content uploaded
	EvDestroyBuffer                      // Buffer released
	EvCompileShader                      // Shader compiled
	EvCreateInputLayout                  // Input layout created
	EvCreatePipeline                     // Pipeline state built
	EvDestroyPipeline                    // Pipeline state released

	// Submission events
	EvAcquireQueue  // Render queue acquired
	EvQueuePipeline // Pipeline state enqueued for drawing
	EvEndFrame      // Frame finished

	numEventTypes
)

var eventTypeNames = [...]string{
	EvCreateBuffer:      "CreateBuffer",
	EvUpdateBuffer:      "UpdateBuffer",
	EvDestroyBuffer:     "DestroyBuffer",
	EvCompileShader:     "CompileShader",
	EvCreateInputLayout: "CreateInputLayout",
	EvCreatePipeline:    "CreatePipeline",
	EvDestroyPipeline:   "DestroyPipeline",
	EvAcquireQueue:      "AcquireQueue",
	EvQueuePipeline:     "QueuePipeline",
	EvEndFrame:          "EndFrame",
}

// String returns the event type name.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "Unknown"
}

// Event is implemented by all recorded events.
type Event interface {
	Type() EventType
}

// CreateBuffer records a buffer allocation.
type CreateBuffer struct {
	Frame   uint64
	Label   string
	Size    uint64
	Usage   gputypes.BufferUsage
	Dynamic bool
}

// UpdateBuffer records an upload. Grew is set when the upload made a
// dynamic buffer reallocate; Capacity is the size after the upload.
type UpdateBuffer struct {
	Frame    uint64
	Label    string
	Bytes    int
	Capacity uint64
	Grew     bool
}

// DestroyBuffer records a buffer release.
type DestroyBuffer struct {
	Frame uint64
	Label string
}

// CompileShader records a shader compilation. Cached is set when the device
// returned an already compiled shader.
type CompileShader struct {
	Frame    uint64
	Label    string
	Stage    gpucore.ShaderStage
	Language gpucore.ShaderLanguage
	Cached   bool
}

// CreateInputLayout records an input layout creation.
type CreateInputLayout struct {
	Frame      uint64
	Stride     uint64
	Attributes int
}

// CreatePipeline records a pipeline state build.
type CreatePipeline struct {
	Frame       uint64
	ID          uint64
	Topology    gputypes.PrimitiveTopology
	NumVertices uint32
	NumIndices  uint32
}

// DestroyPipeline records a pipeline state release.
type DestroyPipeline struct {
	Frame uint64
	ID    uint64
}

// AcquireQueue records a render queue lookup.
type AcquireQueue struct {
	Frame  uint64
	Name   string
	Sorted bool
	Queue  gpucore.RenderQueueID
}

// QueuePipeline records a draw submission.
type QueuePipeline struct {
	Frame       uint64
	Queue       string
	Pipeline    uint64
	NumVertices uint32
}

// EndFrame records the end of a frame and the number of draws it held.
type EndFrame struct {
	Frame uint64
	Draws int
}

// Type implementations.
func (CreateBuffer) Type() EventType      { return EvCreateBuffer }
func (UpdateBuffer) Type() EventType      { return EvUpdateBuffer }
func (DestroyBuffer) Type() EventType     { return EvDestroyBuffer }
func (CompileShader) Type() EventType     { return EvCompileShader }
func (CreateInputLayout) Type() EventType { return EvCreateInputLayout }
func (CreatePipeline) Type() EventType    { return EvCreatePipeline }
func (DestroyPipeline) Type() EventType   { return EvDestroyPipeline }
func (AcquireQueue) Type() EventType      { return EvAcquireQueue }
func (QueuePipeline) Type() EventType     { return EvQueuePipeline }
func (EndFrame) Type() EventType          { return EvEndFrame }

// String implementations, one line per event for traces.
func (e CreateBuffer) String() string {
	return fmt.Sprintf("[%d] CreateBuffer %q size=%d dynamic=%t", e.Frame, e.Label, e.Size, e.Dynamic)
}

func (e UpdateBuffer) String() string {
	s := fmt.Sprintf("[%d] UpdateBuffer %q bytes=%d capacity=%d", e.Frame, e.Label, e.Bytes, e.Capacity)
	if e.Grew {
		s += " (grew)"
	}
	return s
}

func (e DestroyBuffer) String() string {
	return fmt.Sprintf("[%d] DestroyBuffer %q", e.Frame, e.Label)
}

func (e CompileShader) String() string {
	return fmt.Sprintf("[%d] CompileShader %q %v %v cached=%t", e.Frame, e.Label, e.Stage, e.Language, e.Cached)
}

func (e CreateInputLayout) String() string {
	return fmt.Sprintf("[%d] CreateInputLayout stride=%d attributes=%d", e.Frame, e.Stride, e.Attributes)
}

func (e CreatePipeline) String() string {
	return fmt.Sprintf("[%d] CreatePipeline #%d vertices=%d indices=%d", e.Frame, e.ID, e.NumVertices, e.NumIndices)
}

func (e DestroyPipeline) String() string {
	return fmt.Sprintf("[%d] DestroyPipeline #%d", e.Frame, e.ID)
}

func (e AcquireQueue) String() string {
	return fmt.Sprintf("[%d] AcquireQueue %q -> %d", e.Frame, e.Name, e.Queue)
}

func (e QueuePipeline) String() string {
	return fmt.Sprintf("[%d] QueuePipeline %q #%d vertices=%d", e.Frame, e.Queue, e.Pipeline, e.NumVertices)
}

func (e EndFrame) String() string {
	return fmt.Sprintf("[%d] EndFrame draws=%d", e.Frame, e.Draws)
}

// Filter returns the events of type T in order.
func Filter[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if t, ok := ev.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
