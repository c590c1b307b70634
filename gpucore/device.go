package gpucore

// Resource is a device object whose lifetime is managed through a
// ResourceCache. Destroy releases the underlying device memory and must be
// safe to call more than once.
type Resource interface {
	Label() string
	Destroy()
}

// Buffer is a device buffer.
type Buffer interface {
	Resource

	// Size returns the current capacity in bytes.
	Size() uint64

	// Stride returns the element size in bytes.
	Stride() uint32

	// UpdateData overwrites the buffer content starting at offset 0.
	// Dynamic buffers grow when data is larger than their capacity; the old
	// content is discarded. Static buffers return an error instead.
	UpdateData(data []byte) error
}

// Shader is a compiled shader for one stage.
type Shader interface {
	Resource
	Stage() ShaderStage
}

// PipelineState is an immutable snapshot of everything one draw call needs.
// A new PipelineState is built whenever any of its inputs change; existing
// ones are never mutated.
type PipelineState interface {
	Resource

	// Desc returns a copy of the bound state.
	Desc() PipelineDesc
}

// PipelineBuilder turns a bound PipelineDesc into a device PipelineState.
type PipelineBuilder interface {
	CreatePipelineState(desc *PipelineDesc) (PipelineState, error)
}

// Allocator creates device buffers.
type Allocator interface {
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
}

// ShaderFactory compiles shaders and derives input layouts.
type ShaderFactory interface {
	// ShaderLanguage reports which source language LoadShaderFromString accepts.
	ShaderLanguage() ShaderLanguage

	// LoadShaderFromString compiles source for stage.
	LoadShaderFromString(stage ShaderStage, source, label string) (Shader, error)

	// CreateInputLayout binds a vertex layout to the inputs of vs.
	CreateInputLayout(vs Shader, layout VertexLayout) (*InputLayout, error)
}

// Device is the graphics device as seen by renderers built on gpucore.
//
// Renderers hold a Device but do not own it.
type Device interface {
	ShaderFactory

	// FrameCounter returns the index of the frame currently being built.
	// It increases monotonically.
	FrameCounter() uint64

	// OutputResolution returns the size of the current output in pixels.
	OutputResolution() (width, height uint32)

	// StateMachine returns the state machine used to assemble pipeline
	// states. Bound state persists between calls.
	StateMachine() *StateMachine

	// AcquireRenderQueue returns the queue with the given name for the
	// current frame, creating it if needed.
	AcquireRenderQueue(sorted bool, name string) RenderQueueID

	// QueuePipelineState enqueues ps for drawing in this frame.
	QueuePipelineState(ps PipelineState, q RenderQueueID) error
}

// ResourceCache creates resources and deduplicates shared immutable objects
// by a content hash of their defining parameters.
//
// Objects stored with AddToCache are reference counted: AddToCache holds one
// reference for the caller, each successful CachedObject call acquires
// another, and ReleaseCached drops one. The object is destroyed when the
// count reaches zero.
type ResourceCache interface {
	// CreateBuffer allocates a buffer and tracks it until DeleteResource.
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)

	// CreateViewport creates a viewport object. It is not cached.
	CreateViewport(info ViewportInfo) (*Viewport, error)

	// CachedObject looks up a shared object by content hash.
	CachedObject(hash uint64) (Resource, bool)

	// AddToCache stores r under hash and returns the object that now holds
	// the caller's reference. When hash is already taken that is the stored
	// object, and r is destroyed.
	AddToCache(hash uint64, r Resource) Resource

	// ReleaseCached drops one reference to the object stored under hash.
	ReleaseCached(hash uint64)

	// DeleteResource destroys an exclusively owned resource.
	DeleteResource(r Resource)

	// MakeDefaultStates returns the shared default state objects.
	MakeDefaultStates() (DefaultStates, error)
}

// Cached is a typed CachedObject lookup. It reports false both when nothing
// is stored under hash and when the stored object is not a T; in the latter
// case no reference is kept.
func Cached[T Resource](rc ResourceCache, hash uint64) (T, bool) {
	var zero T
	r, ok := rc.CachedObject(hash)
	if !ok {
		return zero, false
	}
	t, ok := r.(T)
	if !ok {
		rc.ReleaseCached(hash)
		return zero, false
	}
	return t, true
}
