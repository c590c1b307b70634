//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Shader entry points. Both stages of a WGSL module must use them.
const (
	VertexEntryPoint = "vs_main"
	PixelEntryPoint  = "fs_main"
)

var _ gpucore.Shader = (*Shader)(nil)

type shaderKey struct {
	stage gpucore.ShaderStage
	hash  uint64
}

// Shader is a WGSL shader compiled to SPIR-V.
//
// The HAL module is created on demand and dropped when the shader leaves
// the device's shader cache; the SPIR-V is kept so a pipeline that still
// refers to the shader can recreate it.
type Shader struct {
	dev    *Device
	id     uint64
	label  string
	stage  gpucore.ShaderStage
	spirv  []uint32
	module hal.ShaderModule
}

// Label returns the debug label.
func (s *Shader) Label() string { return s.label }

// Destroy is a no-op. Shaders are owned by the device.
func (s *Shader) Destroy() {}

// Stage returns the shader stage.
func (s *Shader) Stage() gpucore.ShaderStage { return s.stage }

// ID returns a device-unique shader ID.
func (s *Shader) ID() uint64 { return s.id }

// EntryPoint returns the WGSL entry point of the shader stage.
func (s *Shader) EntryPoint() string {
	if s.stage == gpucore.ShaderStagePixel {
		return PixelEntryPoint
	}
	return VertexEntryPoint
}

func (s *Shader) ensureModule() (hal.ShaderModule, error) {
	if s.module != nil {
		return s.module, nil
	}
	m, err := s.dev.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  s.label,
		Source: hal.ShaderSource{SPIRV: s.spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %q: %w", s.label, err)
	}
	s.module = m
	return m, nil
}

func (s *Shader) release() {
	if s.module != nil {
		s.dev.device.DestroyShaderModule(s.module)
		s.module = nil
	}
}

// LoadShaderFromString compiles WGSL source for stage. Identical sources
// for the same stage share one Shader.
func (d *Device) LoadShaderFromString(stage gpucore.ShaderStage, source, label string) (gpucore.Shader, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("wgpu: empty shader source %q", label)
	}
	key := shaderKey{stage: stage, hash: gpucore.HashBytes([]byte(source))}
	s, err := d.shaders.GetOrCreate(key, func() (*Shader, error) {
		spirv, err := compileWGSL(source)
		if err != nil {
			return nil, fmt.Errorf("wgpu: compile %q: %w", label, err)
		}
		d.nextShaderID++
		s := &Shader{dev: d, id: d.nextShaderID, label: label, stage: stage, spirv: spirv}
		if _, err := s.ensureModule(); err != nil {
			return nil, fmt.Errorf("wgpu: %w", err)
		}
		slogger().Debug("wgpu: shader compiled", "label", label, "stage", stage, "words", len(spirv))
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateInputLayout validates layout against the vertex shader and assigns
// shader locations in attribute order.
func (d *Device) CreateInputLayout(vs gpucore.Shader, layout gpucore.VertexLayout) (*gpucore.InputLayout, error) {
	s, ok := vs.(*Shader)
	if !ok || s.dev != d {
		return nil, ErrForeignObject
	}
	if s.stage != gpucore.ShaderStageVertex {
		return nil, fmt.Errorf("wgpu: input layout needs a vertex shader, got %v", s.stage)
	}
	if len(layout.Attributes) == 0 || layout.Stride == 0 {
		return nil, fmt.Errorf("wgpu: empty vertex layout")
	}
	for _, a := range layout.Attributes {
		if a.Offset >= layout.Stride {
			return nil, fmt.Errorf("wgpu: attribute %q at offset %d outside stride %d", a.Name, a.Offset, layout.Stride)
		}
	}
	return gpucore.NewInputLayout(layout), nil
}

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V size %d is not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}
