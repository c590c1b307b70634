//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrBufferTooSmall is returned when data larger than a static buffer is
// uploaded to it.
var ErrBufferTooSmall = errors.New("wgpu: static buffer too small")

var _ gpucore.Buffer = (*Buffer)(nil)

// Buffer is a GPU buffer. Dynamic buffers are re-created with a larger
// size when an upload does not fit.
type Buffer struct {
	dev      *Device
	label    string
	stride   uint32
	usage    gputypes.BufferUsage
	dynamic  bool
	capacity uint64
	used     uint64
	raw      hal.Buffer
}

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Size returns the capacity in bytes.
func (b *Buffer) Size() uint64 { return b.capacity }

// Stride returns the element stride in bytes.
func (b *Buffer) Stride() uint32 { return b.stride }

// Used returns the size of the last upload in bytes.
func (b *Buffer) Used() uint64 { return b.used }

// Destroy releases the GPU buffer. Calling Destroy more than once is safe.
func (b *Buffer) Destroy() {
	if b.raw == nil {
		return
	}
	b.dev.device.DestroyBuffer(b.raw)
	b.raw = nil
}

// UpdateData uploads data to the start of the buffer.
func (b *Buffer) UpdateData(data []byte) error {
	if b.raw == nil {
		return fmt.Errorf("%w: buffer %q", ErrDestroyed, b.label)
	}
	need := uint64(len(data))
	if need > b.capacity {
		if !b.dynamic {
			return fmt.Errorf("%w: %q holds %d bytes, got %d", ErrBufferTooSmall, b.label, b.capacity, need)
		}
		if err := b.grow(max(need, 2*b.capacity)); err != nil {
			return err
		}
	}
	if need > 0 {
		if err := b.dev.queue.WriteBuffer(b.raw, 0, data); err != nil {
			return fmt.Errorf("wgpu: write buffer %q: %w", b.label, err)
		}
	}
	b.used = need
	return nil
}

func (b *Buffer) grow(size uint64) error {
	raw, err := b.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  alignBufferSize(size),
		Usage: b.usage,
	})
	if err != nil {
		return fmt.Errorf("wgpu: grow buffer %q to %d bytes: %w", b.label, size, err)
	}
	b.dev.device.DestroyBuffer(b.raw)
	slogger().Debug("wgpu: buffer grown", "label", b.label, "from", b.capacity, "to", size)
	b.raw = raw
	b.capacity = size
	return nil
}

// CreateBuffer creates a GPU buffer. Initial data, if any, is uploaded
// immediately.
func (d *Device) CreateBuffer(desc *gpucore.BufferDescriptor) (gpucore.Buffer, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	size := max(desc.Size, uint64(len(desc.Data)))
	if size == 0 {
		return nil, fmt.Errorf("wgpu: buffer %q has zero size", desc.Label)
	}
	usage := desc.Usage | gputypes.BufferUsageCopyDst
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  alignBufferSize(size),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", desc.Label, err)
	}
	b := &Buffer{
		dev:      d,
		label:    desc.Label,
		stride:   desc.Stride,
		usage:    usage,
		dynamic:  desc.Dynamic,
		capacity: size,
		raw:      raw,
	}
	if len(desc.Data) > 0 {
		if err := d.queue.WriteBuffer(raw, 0, desc.Data); err != nil {
			d.device.DestroyBuffer(raw)
			return nil, fmt.Errorf("wgpu: write buffer %q: %w", desc.Label, err)
		}
		b.used = uint64(len(desc.Data))
	}
	return b, nil
}

// alignBufferSize rounds size up to the 4-byte copy alignment.
func alignBufferSize(size uint64) uint64 {
	return (size + 3) &^ 3
}
