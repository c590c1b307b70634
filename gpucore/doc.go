// Package gpucore defines the device abstraction that debugdraw renderers are
// written against.
//
// A renderer never talks to a graphics API directly. It holds a [Device]
// (shader compilation, frame counter, render queues, the [StateMachine]) and a
// [ResourceCache] (buffer creation and deduplication of shared immutable
// objects), both passed in by the host application. Two implementations ship
// with this module:
//   - backend/wgpu drives a real GPU through gogpu/wgpu HAL
//   - recording records every call for tests and headless tooling
//
// # Pipeline states
//
// A draw call is described by a [PipelineDesc]: topology, fixed-function
// state, viewport, constant and vertex buffers, input layout, shaders and the
// vertex/index counts. The [StateMachine] accumulates the bound state and
// [StateMachine.MakeDrawCall] freezes it into a device [PipelineState] through
// a [PipelineBuilder]. Pipeline states are replaced, never mutated: to change
// the vertex count, load the previous state with
// [StateMachine.SetFromPipelineState] and build a new one.
//
//	sm := dev.StateMachine()
//	sm.SetFromPipelineState(old)
//	next, err := sm.MakeDrawCall(numVertices, 0)
//
// # Content hashing
//
// Viewports and state objects are identified by an FNV-1a hash of their
// defining parameters ([HashViewport], [HashDepthStencilDesc], ...). A
// [ResourceCache] uses the hash as key so equivalent objects are shared.
package gpucore
