package gpucore

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Errors returned by the state machine and resource lookups.
var (
	// ErrNoBuilder is returned by MakeDrawCall when the state machine was
	// created without a PipelineBuilder.
	ErrNoBuilder = errors.New("gpucore: state machine has no pipeline builder")

	// ErrIncompleteState is returned by MakeDrawCall when a required binding
	// is missing.
	ErrIncompleteState = errors.New("gpucore: incomplete pipeline state")

	// ErrHashCollision is returned when a content hash already holds an
	// object of another type.
	ErrHashCollision = errors.New("gpucore: content hash holds an object of another type")
)

// PipelineDesc is the complete bound state of one draw call.
type PipelineDesc struct {
	Topology gputypes.PrimitiveTopology

	DepthStencil *DepthStencilState
	Blend        *BlendState
	Rasterizer   *RasterizerState
	Samplers     [numShaderStages]*SamplerState
	Viewport     *Viewport

	// ConstantBuffers is indexed by [stage][slot].
	ConstantBuffers [numShaderStages][MaxConstantBufferSlots]Buffer

	InputLayout   *InputLayout
	VertexShader  Shader
	PixelShader   Shader
	VertexBuffers [MaxVertexBufferSlots]Buffer

	NumVertices uint32
	NumIndices  uint32
}

// ConstantBuffer returns the constant buffer bound at stage and slot.
func (d *PipelineDesc) ConstantBuffer(stage ShaderStage, slot int) Buffer {
	if int(stage) >= int(numShaderStages) || slot < 0 || slot >= MaxConstantBufferSlots {
		return nil
	}
	return d.ConstantBuffers[stage][slot]
}

// Validate reports which required binding is missing, if any.
func (d *PipelineDesc) Validate() error {
	switch {
	case d.VertexShader == nil:
		return fmt.Errorf("%w: no vertex shader", ErrIncompleteState)
	case d.PixelShader == nil:
		return fmt.Errorf("%w: no pixel shader", ErrIncompleteState)
	case d.InputLayout == nil:
		return fmt.Errorf("%w: no input layout", ErrIncompleteState)
	case d.VertexBuffers[0] == nil:
		return fmt.Errorf("%w: no vertex buffer in slot 0", ErrIncompleteState)
	case d.Viewport == nil:
		return fmt.Errorf("%w: no viewport", ErrIncompleteState)
	}
	return nil
}

// StateMachine accumulates bindings and freezes them into pipeline states.
//
// StateMachine is not safe for concurrent use.
type StateMachine struct {
	builder PipelineBuilder
	desc    PipelineDesc
}

// NewStateMachine creates a state machine that builds pipeline states with b.
func NewStateMachine(b PipelineBuilder) *StateMachine {
	sm := &StateMachine{builder: b}
	sm.Reset()
	return sm
}

// Reset clears every binding. Topology returns to triangle list.
func (sm *StateMachine) Reset() {
	sm.desc = PipelineDesc{Topology: gputypes.PrimitiveTopologyTriangleList}
}

// Desc returns a copy of the currently bound state.
func (sm *StateMachine) Desc() PipelineDesc { return sm.desc }

// SetPrimitiveTopology sets the primitive topology.
func (sm *StateMachine) SetPrimitiveTopology(t gputypes.PrimitiveTopology) {
	sm.desc.Topology = t
}

// SetDepthStencilState binds a depth-stencil state.
func (sm *StateMachine) SetDepthStencilState(s *DepthStencilState) { sm.desc.DepthStencil = s }

// SetBlendState binds a blend state.
func (sm *StateMachine) SetBlendState(s *BlendState) { sm.desc.Blend = s }

// SetRasterizerState binds a rasterizer state.
func (sm *StateMachine) SetRasterizerState(s *RasterizerState) { sm.desc.Rasterizer = s }

// SetSamplerState binds the sampler of a stage.
func (sm *StateMachine) SetSamplerState(stage ShaderStage, s *SamplerState) {
	if stage < numShaderStages {
		sm.desc.Samplers[stage] = s
	}
}

// SetViewport binds the viewport.
func (sm *StateMachine) SetViewport(v *Viewport) { sm.desc.Viewport = v }

// SetConstantBuffer binds b to the constant buffer slot of stage.
// Out-of-range stages and slots are ignored.
func (sm *StateMachine) SetConstantBuffer(stage ShaderStage, slot int, b Buffer) {
	if stage >= numShaderStages || slot < 0 || slot >= MaxConstantBufferSlots {
		return
	}
	sm.desc.ConstantBuffers[stage][slot] = b
}

// SetInputLayout binds the input layout.
func (sm *StateMachine) SetInputLayout(l *InputLayout) { sm.desc.InputLayout = l }

// SetVertexShader binds the vertex shader.
func (sm *StateMachine) SetVertexShader(s Shader) { sm.desc.VertexShader = s }

// SetPixelShader binds the pixel shader.
func (sm *StateMachine) SetPixelShader(s Shader) { sm.desc.PixelShader = s }

// SetVertexBuffer binds b to a vertex buffer slot. Out-of-range slots are
// ignored.
func (sm *StateMachine) SetVertexBuffer(slot int, b Buffer) {
	if slot < 0 || slot >= MaxVertexBufferSlots {
		return
	}
	sm.desc.VertexBuffers[slot] = b
}

// SetFromPipelineState loads every binding of ps, including its counts.
// A nil ps resets the machine.
func (sm *StateMachine) SetFromPipelineState(ps PipelineState) {
	if ps == nil {
		sm.Reset()
		return
	}
	sm.desc = ps.Desc()
}

// MakeDrawCall sets the draw counts and builds a new pipeline state from the
// bound state. The bindings stay in place for the next call.
func (sm *StateMachine) MakeDrawCall(numVertices, numIndices uint32) (PipelineState, error) {
	if sm.builder == nil {
		return nil, ErrNoBuilder
	}
	sm.desc.NumVertices = numVertices
	sm.desc.NumIndices = numIndices
	if err := sm.desc.Validate(); err != nil {
		return nil, err
	}
	desc := sm.desc
	ps, err := sm.builder.CreatePipelineState(&desc)
	if err != nil {
		return nil, fmt.Errorf("gpucore: create pipeline state: %w", err)
	}
	return ps, nil
}
