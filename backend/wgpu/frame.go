//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrSubmitTimeout is returned by EndFrame when the GPU does not finish the
// frame within Config.SubmitTimeout.
var ErrSubmitTimeout = errors.New("wgpu: timed out waiting for frame")

// queuedDraw is one pipeline state queued in the current frame.
type queuedDraw struct {
	queue gpucore.RenderQueueID
	state *PipelineState
}

// QueuePipelineState queues ps on q for drawing at the end of the frame.
func (d *Device) QueuePipelineState(ps gpucore.PipelineState, q gpucore.RenderQueueID) error {
	if d.destroyed {
		return ErrDestroyed
	}
	p, ok := ps.(*PipelineState)
	if !ok || p.dev != d {
		return ErrForeignObject
	}
	if p.destroyed {
		return fmt.Errorf("wgpu: queue destroyed pipeline state %s", p.Label())
	}
	if q == gpucore.InvalidQueue || int(q) > len(d.queueNames) {
		return fmt.Errorf("%w: %d", ErrUnknownQueue, q)
	}
	d.pending = append(d.pending, queuedDraw{queue: q, state: p})
	return nil
}

// PendingDraws returns the number of draws queued in the current frame.
func (d *Device) PendingDraws() int { return len(d.pending) }

// EndFrame renders the queued draws into the offscreen target, waits for
// the GPU and advances the frame counter. The frame counter advances and
// the queues are reset even when rendering fails.
func (d *Device) EndFrame() error {
	if d.destroyed {
		return ErrDestroyed
	}
	draws := d.orderedDraws()
	defer d.resetFrame()

	if err := d.target.ensure(d.device, d.cfg.Width, d.cfg.Height, d.cfg.Format); err != nil {
		return fmt.Errorf("wgpu: %w", err)
	}
	if err := d.renderFrame(draws); err != nil {
		return err
	}
	slogger().Debug("wgpu: frame rendered", "frame", d.frame, "draws", len(draws))
	return nil
}

func (d *Device) resetFrame() {
	d.pending = d.pending[:0]
	clear(d.queues)
	clear(d.sorted)
	d.queueNames = d.queueNames[:0]
	d.frame++
}

// orderedDraws returns the pending draws grouped by queue in acquisition
// order. Draws of a sorted queue are ordered by pipeline key.
func (d *Device) orderedDraws() []queuedDraw {
	draws := slices.Clone(d.pending)
	slices.SortStableFunc(draws, func(a, b queuedDraw) int {
		if a.queue != b.queue {
			return int(a.queue) - int(b.queue)
		}
		if d.sorted[a.queue] {
			switch {
			case a.state.key < b.state.key:
				return -1
			case a.state.key > b.state.key:
				return 1
			}
		}
		return 0
	})
	return draws
}

// frameDraw is a queued draw resolved to HAL objects.
type frameDraw struct {
	pipeline  hal.RenderPipeline
	bindGroup hal.BindGroup
	vertices  hal.Buffer
	count     uint32
	viewport  gpucore.ViewportInfo
}

// submission holds the per-frame objects the GPU may still read after
// Submit returns.
type submission struct {
	index      uint64
	encoder    hal.CommandEncoder
	cmdBuf     hal.CommandBuffer
	bindGroups []hal.BindGroup
}

func (s *submission) release(device hal.Device) {
	if s.cmdBuf != nil {
		device.FreeCommandBuffer(s.cmdBuf)
		s.cmdBuf = nil
	}
	if s.encoder != nil {
		s.encoder.Destroy()
		s.encoder = nil
	}
	for _, bg := range s.bindGroups {
		device.DestroyBindGroup(bg)
	}
	s.bindGroups = nil
}

// submitPollInterval is the sleep between completion polls in EndFrame.
const submitPollInterval = time.Millisecond

func (d *Device) renderFrame(draws []queuedDraw) error {
	d.reclaimStalled()

	sub := &submission{}
	submitted := false
	defer func() {
		if !submitted {
			sub.release(d.device)
		}
	}()

	resolved := make([]frameDraw, 0, len(draws))
	for _, qd := range draws {
		fd, ok, err := d.resolveDraw(qd.state)
		if err != nil {
			return err
		}
		if ok {
			resolved = append(resolved, fd)
			sub.bindGroups = append(sub.bindGroups, fd.bindGroup)
		}
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "debugdraw_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	sub.encoder = encoder
	if err := encoder.BeginEncoding("debugdraw_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "debugdraw_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.target.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: d.cfg.ClearColor,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              d.target.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	for _, fd := range resolved {
		vp := fd.viewport
		rp.SetViewport(vp.TopLeftX, vp.TopLeftY, vp.Width, vp.Height, vp.MinZ, vp.MaxZ)
		rp.SetPipeline(fd.pipeline)
		rp.SetBindGroup(0, fd.bindGroup, nil)
		rp.SetVertexBuffer(0, fd.vertices, 0)
		rp.Draw(fd.count, 1, 0, 0)
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	sub.cmdBuf = cmdBuf

	index, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	sub.index = index
	submitted = true

	if !d.waitSubmission(index) {
		// The GPU may still read the frame's objects; keep them until it
		// catches up.
		d.stalled = append(d.stalled, sub)
		return ErrSubmitTimeout
	}
	sub.release(d.device)
	return nil
}

// waitSubmission polls the queue until submission index completes or
// Config.SubmitTimeout passes. It reports whether the submission completed.
func (d *Device) waitSubmission(index uint64) bool {
	deadline := time.Now().Add(d.cfg.SubmitTimeout)
	for d.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(submitPollInterval)
	}
	return true
}

// reclaimStalled releases timed-out submissions the GPU has finished since.
func (d *Device) reclaimStalled() {
	if len(d.stalled) == 0 {
		return
	}
	completed := d.queue.PollCompleted()
	kept := d.stalled[:0]
	for _, sub := range d.stalled {
		if sub.index <= completed {
			sub.release(d.device)
			continue
		}
		kept = append(kept, sub)
	}
	clear(d.stalled[len(kept):])
	d.stalled = kept
}

// StalledSubmissions returns the number of timed-out frames whose objects
// are still held.
func (d *Device) StalledSubmissions() int { return len(d.stalled) }

// resolveDraw binds the buffers of p for this frame. Draws without
// vertices are skipped.
func (d *Device) resolveDraw(p *PipelineState) (frameDraw, bool, error) {
	if p.desc.NumVertices == 0 {
		return frameDraw{}, false, nil
	}
	vb, ok := p.desc.VertexBuffers[0].(*Buffer)
	if !ok || vb.raw == nil {
		return frameDraw{}, false, fmt.Errorf("%w: vertex buffer of %s", ErrDestroyed, p.Label())
	}
	cb, ok := p.desc.ConstantBuffer(gpucore.ShaderStageVertex, 0).(*Buffer)
	if !ok || cb.raw == nil {
		return frameDraw{}, false, fmt.Errorf("%w: constant buffer of %s", ErrDestroyed, p.Label())
	}
	pipeline, err := d.renderPipeline(p)
	if err != nil {
		return frameDraw{}, false, err
	}
	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "debugdraw_frame_bind",
		Layout: d.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: cb.raw.NativeHandle(), Offset: 0, Size: cb.capacity,
			}},
		},
	})
	if err != nil {
		return frameDraw{}, false, fmt.Errorf("wgpu: create bind group: %w", err)
	}

	vp := gpucore.ViewportInfo{Width: float32(d.cfg.Width), Height: float32(d.cfg.Height), MaxZ: 1}
	if p.desc.Viewport != nil {
		vp = p.desc.Viewport.Info()
	}
	return frameDraw{
		pipeline:  pipeline,
		bindGroup: bindGroup,
		vertices:  vb.raw,
		count:     p.desc.NumVertices,
		viewport:  vp,
	}, true, nil
}
