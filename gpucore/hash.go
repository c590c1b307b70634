package gpucore

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// HashViewport computes the FNV-1a content hash of a viewport.
func HashViewport(info ViewportInfo) uint64 {
	h := fnv.New64a()
	WriteString(h, "viewport")
	WriteFloat32(h, info.TopLeftX)
	WriteFloat32(h, info.TopLeftY)
	WriteFloat32(h, info.Width)
	WriteFloat32(h, info.Height)
	WriteFloat32(h, info.MinZ)
	WriteFloat32(h, info.MaxZ)
	return h.Sum64()
}

// HashDepthStencilDesc computes the content hash of a depth-stencil state.
func HashDepthStencilDesc(d DepthStencilDesc) uint64 {
	h := fnv.New64a()
	WriteString(h, "depthstencil")
	WriteBool(h, d.DepthEnabled)
	WriteBool(h, d.DepthWriteEnabled)
	WriteUint32(h, uint32(d.DepthCompare))
	return h.Sum64()
}

// HashBlendDesc computes the content hash of a blend state.
func HashBlendDesc(d BlendDesc) uint64 {
	h := fnv.New64a()
	WriteString(h, "blend")
	WriteBool(h, d.Enabled)
	return h.Sum64()
}

// HashRasterizerDesc computes the content hash of a rasterizer state.
func HashRasterizerDesc(d RasterizerDesc) uint64 {
	h := fnv.New64a()
	WriteString(h, "rasterizer")
	WriteUint32(h, uint32(d.CullMode))
	WriteUint32(h, uint32(d.FrontFace))
	return h.Sum64()
}

// HashSamplerDesc computes the content hash of a sampler state.
func HashSamplerDesc(d SamplerDesc) uint64 {
	h := fnv.New64a()
	WriteString(h, "sampler")
	WriteUint32(h, uint32(d.Filter))
	WriteUint32(h, uint32(d.AddressMode))
	return h.Sum64()
}

// HashVertexLayout computes the content hash of a vertex layout. Attribute
// names do not participate.
func HashVertexLayout(l VertexLayout) uint64 {
	h := fnv.New64a()
	WriteUint64(h, l.Stride)
	//nolint:gosec // G115: attribute count is bounded by GPU limits
	WriteUint32(h, uint32(len(l.Attributes)))
	for i := range l.Attributes {
		WriteUint32(h, uint32(l.Attributes[i].Format))
		WriteUint64(h, l.Attributes[i].Offset)
	}
	return h.Sum64()
}

// HashPipelineKey hashes the parts of a PipelineDesc that determine a
// compiled device pipeline: topology, fixed-function state, input layout and
// shaders (by the identity hash supplied by the caller). Buffers, viewport and
// draw counts are dynamic and do not participate.
func HashPipelineKey(d *PipelineDesc, vsID, psID uint64) uint64 {
	h := fnv.New64a()
	WriteUint32(h, uint32(d.Topology))
	WriteUint64(h, vsID)
	WriteUint64(h, psID)
	if d.InputLayout != nil {
		WriteUint64(h, d.InputLayout.Hash())
	} else {
		WriteUint64(h, 0)
	}
	if d.DepthStencil != nil {
		WriteUint64(h, d.DepthStencil.Hash())
	} else {
		WriteUint64(h, 0)
	}
	if d.Blend != nil {
		WriteUint64(h, d.Blend.Hash())
	} else {
		WriteUint64(h, 0)
	}
	if d.Rasterizer != nil {
		WriteUint64(h, d.Rasterizer.Hash())
	} else {
		WriteUint64(h, 0)
	}
	return h.Sum64()
}

// HashBytes computes an FNV-1a hash of a byte slice.
func HashBytes(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

// WriteUint32 writes a uint32 to the hash.
func WriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

// WriteUint64 writes a uint64 to the hash.
func WriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// WriteFloat32 writes the bit pattern of a float32 to the hash.
func WriteFloat32(h hash.Hash64, v float32) {
	WriteUint32(h, math.Float32bits(v))
}

// WriteString writes a length-prefixed string to the hash.
//
//nolint:gosec // G115: hashed strings are short labels
func WriteString(h hash.Hash64, s string) {
	WriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

// WriteBool writes a bool to the hash.
func WriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
