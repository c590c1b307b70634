package recording

import (
	"fmt"
	"strings"

	"github.com/gogpu/debugdraw/gpucore"
)

type shaderKey struct {
	stage gpucore.ShaderStage
	hash  uint64
}

// Shader is a recorded shader. Shaders are owned and deduplicated by the
// device; Destroy is a no-op.
type Shader struct {
	label  string
	stage  gpucore.ShaderStage
	lang   gpucore.ShaderLanguage
	source string
}

// Label returns the debug label.
func (s *Shader) Label() string { return s.label }

// Destroy is a no-op.
func (s *Shader) Destroy() {}

// Stage returns the shader stage.
func (s *Shader) Stage() gpucore.ShaderStage { return s.stage }

// Source returns the shader source.
func (s *Shader) Source() string { return s.source }

// LoadShaderFromString records a shader compilation. Identical sources for
// the same stage return the same Shader.
func (d *Device) LoadShaderFromString(stage gpucore.ShaderStage, source, label string) (gpucore.Shader, error) {
	if err := d.takeFault(EvCompileShader); err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyShader, label)
	}
	key := shaderKey{stage: stage, hash: gpucore.HashBytes([]byte(source))}
	if s, ok := d.shaders[key]; ok {
		d.record(CompileShader{Frame: d.frame, Label: label, Stage: stage, Language: d.lang, Cached: true})
		return s, nil
	}
	s := &Shader{label: label, stage: stage, lang: d.lang, source: source}
	d.shaders[key] = s
	d.record(CompileShader{Frame: d.frame, Label: label, Stage: stage, Language: d.lang})
	return s, nil
}

// CreateInputLayout records an input layout creation.
func (d *Device) CreateInputLayout(vs gpucore.Shader, layout gpucore.VertexLayout) (*gpucore.InputLayout, error) {
	if err := d.takeFault(EvCreateInputLayout); err != nil {
		return nil, err
	}
	if vs == nil || vs.Stage() != gpucore.ShaderStageVertex {
		return nil, fmt.Errorf("recording: input layout needs a vertex shader")
	}
	if len(layout.Attributes) == 0 || layout.Stride == 0 {
		return nil, fmt.Errorf("recording: empty vertex layout")
	}
	d.record(CreateInputLayout{Frame: d.frame, Stride: layout.Stride, Attributes: len(layout.Attributes)})
	return gpucore.NewInputLayout(layout), nil
}

// PipelineState is a recorded pipeline state.
type PipelineState struct {
	dev       *Device
	id        uint64
	desc      gpucore.PipelineDesc
	destroyed bool
}

var _ gpucore.PipelineState = (*PipelineState)(nil)

// Label returns the debug label.
func (p *PipelineState) Label() string { return fmt.Sprintf("Pipeline#%d", p.id) }

// ID returns the creation sequence number, starting at 1.
func (p *PipelineState) ID() uint64 { return p.id }

// Desc returns the bound state.
func (p *PipelineState) Desc() gpucore.PipelineDesc { return p.desc }

// Destroyed reports whether Destroy was called.
func (p *PipelineState) Destroyed() bool { return p.destroyed }

// Destroy releases the pipeline state. Calling Destroy more than once is
// safe.
func (p *PipelineState) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.dev.record(DestroyPipeline{Frame: p.dev.frame, ID: p.id})
}

// CreatePipelineState records a pipeline state build.
func (d *Device) CreatePipelineState(desc *gpucore.PipelineDesc) (gpucore.PipelineState, error) {
	if err := d.takeFault(EvCreatePipeline); err != nil {
		return nil, err
	}
	for _, s := range []gpucore.Shader{desc.VertexShader, desc.PixelShader} {
		rs, ok := s.(*Shader)
		if !ok {
			return nil, ErrForeignObject
		}
		if rs.lang != d.lang {
			return nil, fmt.Errorf("recording: shader %q is %v, device uses %v", rs.label, rs.lang, d.lang)
		}
	}
	d.nextPipeline++
	p := &PipelineState{dev: d, id: d.nextPipeline, desc: *desc}
	d.record(CreatePipeline{
		Frame:       d.frame,
		ID:          p.id,
		Topology:    desc.Topology,
		NumVertices: desc.NumVertices,
		NumIndices:  desc.NumIndices,
	})
	return p, nil
}
