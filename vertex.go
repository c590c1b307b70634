package debugdraw

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
)

// Vertex is one end of a line segment.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
}

// V is shorthand for a Vertex literal.
func V(pos mgl32.Vec3, color mgl32.Vec4) Vertex {
	return Vertex{Position: pos, Color: color}
}

// VertexSize is the size of an encoded Vertex in bytes:
// position (3 x float32) followed by color (4 x float32).
const VertexSize = 28

// FrameConstantsSize is the size of the per-frame constant buffer: one
// column-major 4x4 float32 view-projection matrix.
const FrameConstantsSize = 64

// Common colors.
var (
	White = mgl32.Vec4{1, 1, 1, 1}
	Red   = mgl32.Vec4{1, 0, 0, 1}
	Green = mgl32.Vec4{0, 1, 0, 1}
	Blue  = mgl32.Vec4{0, 0, 1, 1}
)

// LineVertexLayout returns the input layout description of Vertex.
func LineVertexLayout() gpucore.VertexLayout {
	return gpucore.VertexLayout{
		Stride: VertexSize,
		Attributes: []gpucore.VertexAttribute{
			{Name: "POSITION", Format: gputypes.VertexFormatFloat32x3, Offset: 0},
			{Name: "COLOR", Format: gputypes.VertexFormatFloat32x4, Offset: 12},
		},
	}
}

// AppendVertices appends the little-endian encoding of vs to dst.
func AppendVertices(dst []byte, vs []Vertex) []byte {
	for i := range vs {
		v := &vs[i]
		for _, f := range v.Position {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
		for _, f := range v.Color {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
	}
	return dst
}

// DecodeVertices decodes data produced by AppendVertices. Trailing bytes
// that do not form a whole vertex are ignored.
func DecodeVertices(data []byte) []Vertex {
	n := len(data) / VertexSize
	out := make([]Vertex, n)
	for i := range out {
		rec := data[i*VertexSize:]
		for j := range 3 {
			out[i].Position[j] = math.Float32frombits(binary.LittleEndian.Uint32(rec[j*4:]))
		}
		for j := range 4 {
			out[i].Color[j] = math.Float32frombits(binary.LittleEndian.Uint32(rec[12+j*4:]))
		}
	}
	return out
}

// EncodeMat4 returns the 64-byte column-major encoding of m.
func EncodeMat4(m mgl32.Mat4) []byte {
	buf := make([]byte, 0, FrameConstantsSize)
	for _, f := range m {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// DecodeMat4 decodes the first 64 bytes of data as a column-major matrix.
func DecodeMat4(data []byte) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return m
}
