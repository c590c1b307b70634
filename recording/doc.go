// Package recording provides a gpucore.Device that records every device
// call instead of talking to a GPU.
//
// The recording device is used by tests and headless tools. Buffer contents
// are kept in memory, so the geometry of each submitted draw can be
// inspected, and the last finished frame can be rasterized to an image.
//
// # Basic Usage
//
//	dev := recording.NewDevice(800, 600)
//	rc := cache.NewResources(dev)
//	lines, _ := debugdraw.NewLineRenderer(dev, rc)
//
//	lines.AddAABB(mgl32.Vec3{}, 1, debugdraw.Red)
//	_ = lines.Flush(viewProj)
//	dev.EndFrame()
//
//	for _, ev := range dev.Events() {
//	    fmt.Println(ev)
//	}
//
// # Events
//
// Every call is captured as a typed event struct (CreateBuffer,
// UpdateBuffer, CreatePipeline, QueuePipeline, ...). Use [Filter] to select
// events of one kind:
//
//	uploads := recording.Filter[recording.UpdateBuffer](dev.Events())
//
// # Fault Injection
//
// [Device.FailNext] makes the next call of a given kind fail, which lets
// tests exercise error paths of code built on gpucore.
//
// # Preview
//
// [Device.Preview] rasterizes the line draws of the last finished frame with
// golang.org/x/image/vector, and [Device.WritePNG] encodes the result.
package recording
