//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoConstantBuffer is returned when a pipeline state has no constant
// buffer bound to the vertex stage in slot 0.
var ErrNoConstantBuffer = errors.New("wgpu: no constant buffer in vertex slot 0")

var _ gpucore.PipelineState = (*PipelineState)(nil)

// PipelineState is a snapshot of the state machine that can be queued for
// drawing. The HAL render pipeline it needs lives in the device pipeline
// cache and is shared by every state with the same pipeline key.
type PipelineState struct {
	dev       *Device
	key       uint64
	desc      gpucore.PipelineDesc
	destroyed bool
}

// Label returns the debug label.
func (p *PipelineState) Label() string { return fmt.Sprintf("Pipeline#%016x", p.key) }

// Key returns the pipeline cache key.
func (p *PipelineState) Key() uint64 { return p.key }

// Desc returns the bound state.
func (p *PipelineState) Desc() gpucore.PipelineDesc { return p.desc }

// Destroy marks the state unusable. The cached render pipeline stays.
func (p *PipelineState) Destroy() { p.destroyed = true }

// CreatePipelineState snapshots desc and makes sure its render pipeline
// exists.
func (d *Device) CreatePipelineState(desc *gpucore.PipelineDesc) (gpucore.PipelineState, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	vs, ok := desc.VertexShader.(*Shader)
	if !ok || vs.dev != d {
		return nil, ErrForeignObject
	}
	ps, ok := desc.PixelShader.(*Shader)
	if !ok || ps.dev != d {
		return nil, ErrForeignObject
	}
	if _, ok := desc.VertexBuffers[0].(*Buffer); !ok {
		return nil, ErrForeignObject
	}
	if _, ok := desc.ConstantBuffer(gpucore.ShaderStageVertex, 0).(*Buffer); !ok {
		return nil, ErrNoConstantBuffer
	}

	p := &PipelineState{
		dev:  d,
		key:  gpucore.HashPipelineKey(desc, vs.id, ps.id),
		desc: *desc,
	}
	if _, err := d.renderPipeline(p); err != nil {
		return nil, err
	}
	return p, nil
}

// renderPipeline returns the cached render pipeline of p, creating it on a
// miss.
func (d *Device) renderPipeline(p *PipelineState) (hal.RenderPipeline, error) {
	return d.pipelines.GetOrCreate(p.key, func() (hal.RenderPipeline, error) {
		rp, err := d.createRenderPipeline(&p.desc)
		if err != nil {
			return nil, err
		}
		slogger().Debug("wgpu: render pipeline created",
			"key", p.key, "topology", p.desc.Topology)
		return rp, nil
	})
}

func (d *Device) createRenderPipeline(desc *gpucore.PipelineDesc) (hal.RenderPipeline, error) {
	vs := desc.VertexShader.(*Shader) //nolint:errcheck // checked by CreatePipelineState
	ps := desc.PixelShader.(*Shader)  //nolint:errcheck // checked by CreatePipelineState
	vsModule, err := vs.ensureModule()
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}
	psModule, err := ps.ensureModule()
	if err != nil {
		return nil, fmt.Errorf("wgpu: %w", err)
	}

	var blend *gputypes.BlendState
	if desc.Blend != nil && desc.Blend.Desc().Enabled {
		premulBlend := gputypes.BlendStatePremultiplied()
		blend = &premulBlend
	}
	primitive := gputypes.PrimitiveState{
		Topology: desc.Topology,
		CullMode: gputypes.CullModeNone,
	}
	if desc.Rasterizer != nil {
		r := desc.Rasterizer.Desc()
		primitive.CullMode = r.CullMode
		primitive.FrontFace = r.FrontFace
	}

	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "debugdraw_pipeline",
		Layout: d.pipeLayout,
		Vertex: hal.VertexState{
			Module:     vsModule,
			EntryPoint: vs.EntryPoint(),
			Buffers:    vertexBufferLayouts(desc.InputLayout),
		},
		Fragment: &hal.FragmentState{
			Module:     psModule,
			EntryPoint: ps.EntryPoint(),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    d.cfg.Format,
					Blend:     blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: depthStencilState(desc.DepthStencil),
		Primitive:    primitive,
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	return pipeline, nil
}

func vertexBufferLayouts(il *gpucore.InputLayout) []gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(il.Layout.Attributes))
	for i, a := range il.Layout.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         a.Offset,
			ShaderLocation: il.Locations[i],
		}
	}
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: il.Layout.Stride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  attrs,
		},
	}
}

func depthStencilState(ds *gpucore.DepthStencilState) *hal.DepthStencilState {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	state := &hal.DepthStencilState{
		Format:       depthFormat,
		DepthCompare: gputypes.CompareFunctionAlways,
		StencilFront: keep,
		StencilBack:  keep,
	}
	if ds != nil && ds.Desc().DepthEnabled {
		state.DepthWriteEnabled = ds.Desc().DepthWriteEnabled
		state.DepthCompare = ds.Desc().DepthCompare
	}
	return state
}
