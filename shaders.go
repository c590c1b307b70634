package debugdraw

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/debugdraw/gpucore"
)

// Line shader sources. The WGSL module holds both stages (vs_main and
// fs_main); GLSL needs one source per stage.

//go:embed shaders/line.wgsl
var lineShaderWGSL string

//go:embed shaders/line.vert.glsl
var lineVertexGLSL string

//go:embed shaders/line.frag.glsl
var linePixelGLSL string

// Shader entry points used by WGSL devices.
const (
	VertexEntryPoint = "vs_main"
	PixelEntryPoint  = "fs_main"
)

// LineShaderSource returns the line shader source of stage in lang.
func LineShaderSource(lang gpucore.ShaderLanguage, stage gpucore.ShaderStage) (string, error) {
	switch lang {
	case gpucore.ShaderLanguageWGSL:
		return lineShaderWGSL, nil
	case gpucore.ShaderLanguageGLSL:
		if stage == gpucore.ShaderStagePixel {
			return linePixelGLSL, nil
		}
		return lineVertexGLSL, nil
	default:
		return "", fmt.Errorf("debugdraw: no line shader for %v", lang)
	}
}
