package debugdraw

import (
	"fmt"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
)

// lineResources is the GPU resource set of a LineRenderer.
//
// The renderer owns the two buffers and the pipeline state. The viewport is
// a cache reference released on teardown. Shaders and the input layout
// belong to the device's shader factory.
type lineResources struct {
	vertexBuffer   gpucore.Buffer
	constantBuffer gpucore.Buffer
	pipeline       gpucore.PipelineState

	vs     gpucore.Shader
	ps     gpucore.Shader
	layout *gpucore.InputLayout

	viewport     *gpucore.Viewport
	viewportHash uint64
}

// release returns every owned resource to rc in reverse creation order.
func (res *lineResources) release(rc gpucore.ResourceCache) {
	if res.pipeline != nil {
		rc.DeleteResource(res.pipeline)
		res.pipeline = nil
	}
	if res.viewport != nil {
		rc.ReleaseCached(res.viewportHash)
		res.viewport = nil
	}
	res.vs, res.ps, res.layout = nil, nil, nil
	if res.constantBuffer != nil {
		rc.DeleteResource(res.constantBuffer)
		res.constantBuffer = nil
	}
	if res.vertexBuffer != nil {
		rc.DeleteResource(res.vertexBuffer)
		res.vertexBuffer = nil
	}
}

// ensureResources creates the resource set if it does not exist yet.
// On failure everything created so far is released and the renderer stays
// uninitialized.
func (r *LineRenderer) ensureResources() error {
	if r.res != nil {
		return nil
	}
	res := &lineResources{}
	if err := r.initResources(res); err != nil {
		res.release(r.rc)
		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}
	r.res = res
	Logger().Debug("debugdraw: line resources created",
		"label", r.opts.label,
		"capacity", r.opts.initialCapacity,
		"viewport", res.viewport.Info())
	return nil
}

func (r *LineRenderer) initResources(res *lineResources) error {
	var err error

	res.vertexBuffer, err = r.rc.CreateBuffer(&gpucore.BufferDescriptor{
		Label:   r.label("LineBuffer"),
		Size:    uint64(r.opts.initialCapacity) * VertexSize,
		Stride:  VertexSize,
		Usage:   gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		Dynamic: true,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}

	res.constantBuffer, err = r.rc.CreateBuffer(&gpucore.BufferDescriptor{
		Label:  r.label("LineCB"),
		Size:   FrameConstantsSize,
		Stride: FrameConstantsSize,
		Usage:  gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("constant buffer: %w", err)
	}

	if err := r.loadShaders(res); err != nil {
		return err
	}

	states, err := r.rc.MakeDefaultStates()
	if err != nil {
		return fmt.Errorf("default states: %w", err)
	}

	if err := r.acquireViewport(res); err != nil {
		return err
	}

	sm := r.device.StateMachine()
	sm.Reset()
	sm.SetPrimitiveTopology(gputypes.PrimitiveTopologyLineList)
	sm.SetBlendState(states.Blend)
	sm.SetRasterizerState(states.Rasterizer)
	sm.SetDepthStencilState(states.DepthStencil)
	sm.SetSamplerState(gpucore.ShaderStageVertex, states.Sampler)
	sm.SetSamplerState(gpucore.ShaderStagePixel, states.Sampler)
	sm.SetViewport(res.viewport)
	sm.SetConstantBuffer(gpucore.ShaderStageVertex, 0, res.constantBuffer)
	sm.SetConstantBuffer(gpucore.ShaderStagePixel, 0, res.constantBuffer)
	sm.SetInputLayout(res.layout)
	sm.SetVertexShader(res.vs)
	sm.SetPixelShader(res.ps)
	sm.SetVertexBuffer(0, res.vertexBuffer)

	res.pipeline, err = sm.MakeDrawCall(0, 0)
	if err != nil {
		return fmt.Errorf("pipeline state: %w", err)
	}
	return nil
}

func (r *LineRenderer) loadShaders(res *lineResources) error {
	lang := r.device.ShaderLanguage()

	vsSrc, err := LineShaderSource(lang, gpucore.ShaderStageVertex)
	if err != nil {
		return err
	}
	res.vs, err = r.device.LoadShaderFromString(gpucore.ShaderStageVertex, vsSrc, r.label("LineVS"))
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}

	psSrc, err := LineShaderSource(lang, gpucore.ShaderStagePixel)
	if err != nil {
		return err
	}
	res.ps, err = r.device.LoadShaderFromString(gpucore.ShaderStagePixel, psSrc, r.label("LinePS"))
	if err != nil {
		return fmt.Errorf("pixel shader: %w", err)
	}

	res.layout, err = r.device.CreateInputLayout(res.vs, LineVertexLayout())
	if err != nil {
		return fmt.Errorf("input layout: %w", err)
	}
	return nil
}

// acquireViewport looks up the full-output viewport in the resource cache
// and creates it on a miss. Either way the renderer holds one reference.
func (r *LineRenderer) acquireViewport(res *lineResources) error {
	w, h := r.device.OutputResolution()
	info := gpucore.ViewportInfo{
		Width:  float32(w),
		Height: float32(h),
		MinZ:   0,
		MaxZ:   1,
	}
	hash := gpucore.HashViewport(info)

	if vp, ok := gpucore.Cached[*gpucore.Viewport](r.rc, hash); ok {
		res.viewport, res.viewportHash = vp, hash
		return nil
	}
	vp, err := r.rc.CreateViewport(info)
	if err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	shared, ok := r.rc.AddToCache(hash, vp).(*gpucore.Viewport)
	if !ok {
		r.rc.ReleaseCached(hash)
		return fmt.Errorf("viewport %016x: %w", hash, gpucore.ErrHashCollision)
	}
	res.viewport, res.viewportHash = shared, hash
	return nil
}
