package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// RenderQueueID identifies a submission queue handed out by
// Device.AcquireRenderQueue. IDs are only valid for the frame they were
// acquired in.
type RenderQueueID uint32

// InvalidQueue is the zero value, representing no queue.
const InvalidQueue RenderQueueID = 0

// ShaderLanguage is the source language a device compiles shaders from.
type ShaderLanguage uint8

// Shader languages.
const (
	// ShaderLanguageWGSL is WebGPU Shading Language (gogpu/wgpu devices).
	ShaderLanguageWGSL ShaderLanguage = iota + 1

	// ShaderLanguageGLSL is OpenGL Shading Language 4.20.
	ShaderLanguageGLSL
)

// String returns the language name.
func (l ShaderLanguage) String() string {
	switch l {
	case ShaderLanguageWGSL:
		return "WGSL"
	case ShaderLanguageGLSL:
		return "GLSL"
	default:
		return fmt.Sprintf("ShaderLanguage(%d)", int(l))
	}
}

// ShaderStage selects the programmable stage a shader or binding belongs to.
type ShaderStage uint8

// Shader stages. Pixel is the fragment stage.
const (
	ShaderStageVertex ShaderStage = iota
	ShaderStagePixel

	numShaderStages
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStagePixel:
		return "pixel"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// Visibility converts the stage to the gputypes visibility flag.
func (s ShaderStage) Visibility() gputypes.ShaderStage {
	if s == ShaderStagePixel {
		return gputypes.ShaderStageFragment
	}
	return gputypes.ShaderStageVertex
}

// MaxConstantBufferSlots is the number of constant buffer slots per stage.
const MaxConstantBufferSlots = 4

// MaxVertexBufferSlots is the number of vertex buffer slots.
const MaxVertexBufferSlots = 4

// BufferDescriptor describes a buffer to allocate.
type BufferDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Size is the initial capacity in bytes.
	Size uint64

	// Stride is the size of one element in bytes.
	Stride uint32

	// Usage is the gputypes usage mask.
	Usage gputypes.BufferUsage

	// Dynamic marks the buffer as CPU-writable every frame. Dynamic buffers
	// reallocate on UpdateData when the data exceeds their capacity.
	Dynamic bool

	// Data is optional initial content. It may be shorter than Size.
	Data []byte
}

// ViewportInfo describes a viewport rectangle and depth range.
type ViewportInfo struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinZ     float32
	MaxZ     float32
}

// VertexAttribute is one field of a vertex record.
type VertexAttribute struct {
	// Name is the semantic of the field (e.g. "POSITION").
	Name string

	// Format is the component format.
	Format gputypes.VertexFormat

	// Offset is the byte offset inside the vertex.
	Offset uint64
}

// VertexLayout describes the field layout of a vertex record.
type VertexLayout struct {
	Stride     uint64
	Attributes []VertexAttribute
}

// DepthStencilDesc describes depth testing. Stencil is not used by any
// pipeline in this module and is not described.
type DepthStencilDesc struct {
	DepthEnabled      bool
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
}

// BlendDesc describes color blending for the single color target.
type BlendDesc struct {
	Enabled bool
}

// RasterizerDesc describes primitive rasterization.
type RasterizerDesc struct {
	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace
}

// SamplerDesc describes texture sampling.
type SamplerDesc struct {
	Filter      gputypes.FilterMode
	AddressMode gputypes.AddressMode
}

// DefaultDepthStencilDesc returns depth test LessEqual with writes enabled.
func DefaultDepthStencilDesc() DepthStencilDesc {
	return DepthStencilDesc{
		DepthEnabled:      true,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLessEqual,
	}
}

// DefaultBlendDesc returns opaque (blending disabled).
func DefaultBlendDesc() BlendDesc {
	return BlendDesc{}
}

// DefaultRasterizerDesc returns no culling, counter-clockwise front faces.
func DefaultRasterizerDesc() RasterizerDesc {
	return RasterizerDesc{
		CullMode:  gputypes.CullModeNone,
		FrontFace: gputypes.FrontFaceCCW,
	}
}

// DefaultSamplerDesc returns linear filtering with clamp-to-edge addressing.
func DefaultSamplerDesc() SamplerDesc {
	return SamplerDesc{
		Filter:      gputypes.FilterModeLinear,
		AddressMode: gputypes.AddressModeClampToEdge,
	}
}
