package gpucore

// StateObject is an immutable fixed-function state (depth-stencil, blend,
// rasterizer or sampler). It owns no device memory, so Destroy is a no-op;
// backends translate the description when building pipelines.
type StateObject[D comparable] struct {
	label string
	desc  D
	hash  uint64
}

// Label returns the debug label.
func (s *StateObject[D]) Label() string { return s.label }

// Destroy is a no-op.
func (s *StateObject[D]) Destroy() {}

// Desc returns the state description.
func (s *StateObject[D]) Desc() D { return s.desc }

// Hash returns the content hash the object is cached under.
func (s *StateObject[D]) Hash() uint64 { return s.hash }

// State object kinds.
type (
	DepthStencilState = StateObject[DepthStencilDesc]
	BlendState        = StateObject[BlendDesc]
	RasterizerState   = StateObject[RasterizerDesc]
	SamplerState      = StateObject[SamplerDesc]
)

// NewDepthStencilState creates a depth-stencil state object.
func NewDepthStencilState(desc DepthStencilDesc) *DepthStencilState {
	return &DepthStencilState{label: "DepthStencilState", desc: desc, hash: HashDepthStencilDesc(desc)}
}

// NewBlendState creates a blend state object.
func NewBlendState(desc BlendDesc) *BlendState {
	return &BlendState{label: "BlendState", desc: desc, hash: HashBlendDesc(desc)}
}

// NewRasterizerState creates a rasterizer state object.
func NewRasterizerState(desc RasterizerDesc) *RasterizerState {
	return &RasterizerState{label: "RasterizerState", desc: desc, hash: HashRasterizerDesc(desc)}
}

// NewSamplerState creates a sampler state object.
func NewSamplerState(desc SamplerDesc) *SamplerState {
	return &SamplerState{label: "SamplerState", desc: desc, hash: HashSamplerDesc(desc)}
}

// DefaultStates is the set of shared default state objects returned by
// ResourceCache.MakeDefaultStates.
type DefaultStates struct {
	DepthStencil *DepthStencilState
	Blend        *BlendState
	Rasterizer   *RasterizerState
	Sampler      *SamplerState
}

// Viewport is a viewport object. Like state objects it holds no device
// memory.
type Viewport struct {
	info ViewportInfo
	hash uint64
}

// NewViewport creates a viewport object.
func NewViewport(info ViewportInfo) *Viewport {
	return &Viewport{info: info, hash: HashViewport(info)}
}

// Label returns the debug label.
func (v *Viewport) Label() string { return "Viewport" }

// Destroy is a no-op.
func (v *Viewport) Destroy() {}

// Info returns the viewport rectangle and depth range.
func (v *Viewport) Info() ViewportInfo { return v.info }

// Hash returns HashViewport of the viewport info.
func (v *Viewport) Hash() uint64 { return v.hash }

// InputLayout binds a VertexLayout to the input locations of a vertex
// shader. Attribute i is fed to shader location Locations[i].
type InputLayout struct {
	Layout    VertexLayout
	Locations []uint32
	hash      uint64
}

// NewInputLayout creates an input layout that assigns attribute i to
// location i.
func NewInputLayout(layout VertexLayout) *InputLayout {
	locs := make([]uint32, len(layout.Attributes))
	for i := range locs {
		locs[i] = uint32(i) //nolint:gosec // G115: attribute count is small
	}
	attrs := make([]VertexAttribute, len(layout.Attributes))
	copy(attrs, layout.Attributes)
	layout.Attributes = attrs
	return &InputLayout{Layout: layout, Locations: locs, hash: HashVertexLayout(layout)}
}

// Hash returns HashVertexLayout of the layout.
func (l *InputLayout) Hash() uint64 { return l.hash }
