// Package cache provides the caches used by debugdraw devices.
//
// # Cache[K, V]
//
// A thread-safe LRU cache with a fixed capacity and an eviction callback,
// used by the wgpu backend to keep compiled shader modules and render
// pipelines. Entries leaving the cache are handed to the callback so GPU
// objects can be released.
//
//	pipelines := cache.New[uint64, hal.RenderPipeline](64).
//		OnEvict(func(_ uint64, p hal.RenderPipeline) { device.DestroyRenderPipeline(p) })
//
// # Resources
//
// [Resources] implements gpucore.ResourceCache: it creates buffers through a
// gpucore.Allocator and stores shared immutable objects (viewports, state
// objects) by content hash with reference counting.
//
//	rc := cache.NewResources(device)
//	vp, ok := gpucore.Cached[*gpucore.Viewport](rc, gpucore.HashViewport(info))
//
// # Thread Safety
//
// Both Cache and Resources are safe for concurrent use.
// Neither should be copied after creation (they contain mutexes).
package cache
