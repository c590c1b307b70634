// Package debugdraw is an immediate-mode debug line renderer.
//
// Client code adds line segments, or shapes built from them, at any point
// during a frame. Once per frame [LineRenderer.Flush] uploads everything to
// the GPU and submits it as a single line-list draw call.
//
// # Quick Start
//
//	dev, err := wgpu.OpenNoop(wgpu.Config{Width: 800, Height: 600})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Destroy()
//
//	rc := cache.NewResources(dev)
//	lines, err := debugdraw.NewLineRenderer(dev, rc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lines.Destroy()
//
//	for frame := 0; frame < 3; frame++ {
//	    lines.AddAABB(mgl32.Vec3{0, 0, 0}, 1, debugdraw.Red)
//	    _ = lines.AddRingZ(mgl32.Vec3{0, 0, 0}, 2, debugdraw.White, 32)
//	    if err := lines.Flush(viewProj); err != nil {
//	        log.Print(err)
//	    }
//	    if err := dev.EndFrame(); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Frame Protocol
//
// The renderer reads the frame index from its [gpucore.Device]. A flush with
// geometry is accepted once per frame index; geometry added after it waits
// for the next frame. An accepted flush clears the pending geometry unless
// the GPU resources could not be created.
//
// GPU resources (vertex buffer, constant buffer, pipeline state) are created
// on the first flush that has geometry, and the vertex buffer grows when a
// frame has more vertices than it can hold.
//
// # Logging
//
// debugdraw is silent by default. Use [SetLogger] to enable structured
// logging through log/slog.
package debugdraw
