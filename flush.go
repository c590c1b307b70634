package debugdraw

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Flush uploads the pending geometry and submits it as one draw call.
//
// Only one flush is accepted per frame: a second call in the same frame
// logs a warning and returns ErrAlreadyFlushed without touching the pending
// geometry. Flushing with no geometry is a no-op that does not count as the
// frame's flush.
//
// Once a flush is accepted the pending geometry is cleared, even when the
// upload or submission fails. If the GPU resources cannot be created the
// geometry is kept and creation is retried by the next flush.
func (r *LineRenderer) Flush(viewProj mgl32.Mat4) error {
	frame := r.device.FrameCounter()
	if !r.guard.Check(frame) {
		Logger().Warn("debugdraw: LineRenderer should only be flushed once per frame",
			"frame", frame, "label", r.opts.label)
		return ErrAlreadyFlushed
	}
	if len(r.vertices) == 0 {
		return nil
	}
	r.guard.Mark(frame)

	if err := r.ensureResources(); err != nil {
		return err
	}
	defer r.ClearCache()

	return r.submit(viewProj)
}

func (r *LineRenderer) submit(viewProj mgl32.Mat4) error {
	res := r.res
	n := len(r.vertices)

	r.scratch = AppendVertices(r.scratch[:0], r.vertices)
	if err := res.vertexBuffer.UpdateData(r.scratch); err != nil {
		return fmt.Errorf("%w: upload vertices: %w", ErrSubmitFailed, err)
	}
	if err := res.constantBuffer.UpdateData(EncodeMat4(viewProj)); err != nil {
		return fmt.Errorf("%w: upload frame constants: %w", ErrSubmitFailed, err)
	}

	sm := r.device.StateMachine()
	sm.SetFromPipelineState(res.pipeline)
	//nolint:gosec // G115: vertex count is bounded by buffer size
	next, err := sm.MakeDrawCall(uint32(n), 0)
	if err != nil {
		return fmt.Errorf("%w: rebuild pipeline state: %w", ErrSubmitFailed, err)
	}
	r.rc.DeleteResource(res.pipeline)
	res.pipeline = next

	q := r.device.AcquireRenderQueue(false, r.opts.queueName)
	if err := r.device.QueuePipelineState(res.pipeline, q); err != nil {
		return fmt.Errorf("%w: enqueue: %w", ErrSubmitFailed, err)
	}

	Logger().Debug("debugdraw: lines flushed",
		"label", r.opts.label,
		"vertices", n,
		"bytes", len(r.scratch),
		"buffer", res.vertexBuffer.Size())
	return nil
}
