// Package wgpu runs debugdraw on a real GPU through gogpu/wgpu.
//
// Device implements gpucore.Device on top of a wgpu HAL device. Line
// shaders are compiled from WGSL to SPIR-V with gogpu/naga, render
// pipelines are cached by their state hash, and every frame is rendered
// into an offscreen BGRA8 target with a depth buffer.
//
// # Opening a device
//
//	dev, err := wgpu.Open(wgpu.Config{Width: 1280, Height: 720})   // Vulkan
//	dev, err := wgpu.OpenNoop(wgpu.Config{Width: 1280, Height: 720}) // no GPU, for tests
//	dev, err := wgpu.NewFromProvider(provider, cfg)                  // shared device
//
// A shared device comes from a gpucontext.DeviceProvider that also exposes
// HalDevice() and HalQueue(), such as the one a gogpu application hands out.
// Destroy never closes a shared device.
//
// # Frames
//
// Renderers queue pipeline states during a frame. EndFrame records one
// render pass that clears the target and draws every queued state in queue
// order, submits it, waits for the GPU and advances the frame counter.
//
//	for running {
//	    lines.AddAABB(center, 1, debugdraw.Red)
//	    if err := lines.Flush(viewProj); err != nil { ... }
//	    if err := dev.EndFrame(); err != nil { ... }
//	}
//
// # Thread Safety
//
// Device is not safe for concurrent use. Create and drive it from the
// render goroutine.
package wgpu
