package recording

import (
	"fmt"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
)

// Buffer is an in-memory gpucore.Buffer.
type Buffer struct {
	dev       *Device
	label     string
	usage     gputypes.BufferUsage
	stride    uint32
	dynamic   bool
	capacity  uint64
	data      []byte
	destroyed bool
}

var _ gpucore.Buffer = (*Buffer)(nil)

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Size returns the capacity in bytes.
func (b *Buffer) Size() uint64 { return b.capacity }

// Stride returns the element size in bytes.
func (b *Buffer) Stride() uint32 { return b.stride }

// Usage returns the usage flags the buffer was created with.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// Bytes returns a copy of the last uploaded content.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Destroyed reports whether Destroy was called.
func (b *Buffer) Destroyed() bool { return b.destroyed }

// UpdateData replaces the buffer content. A dynamic buffer that is too small
// grows to max(len(data), 2*capacity); a static one returns
// ErrBufferTooSmall.
func (b *Buffer) UpdateData(data []byte) error {
	if b.destroyed {
		return fmt.Errorf("%w: %q", ErrDestroyed, b.label)
	}
	if err := b.dev.takeFault(EvUpdateBuffer); err != nil {
		return err
	}
	need := uint64(len(data))
	grew := false
	if need > b.capacity {
		if !b.dynamic {
			return fmt.Errorf("%w: %q holds %d bytes, got %d", ErrBufferTooSmall, b.label, b.capacity, need)
		}
		b.capacity = max(need, 2*b.capacity)
		grew = true
		slogger().Debug("recording: buffer grown", "label", b.label, "capacity", b.capacity)
	}
	b.data = append(b.data[:0], data...)
	b.dev.record(UpdateBuffer{
		Frame:    b.dev.frame,
		Label:    b.label,
		Bytes:    len(data),
		Capacity: b.capacity,
		Grew:     grew,
	})
	return nil
}

// Destroy releases the buffer. Calling Destroy more than once is safe.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.data = nil
	delete(b.dev.live, b)
	b.dev.record(DestroyBuffer{Frame: b.dev.frame, Label: b.label})
}
