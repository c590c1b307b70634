package recording

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/vector"
)

// PreviewBackground is the clear color of preview images.
var PreviewBackground = color.RGBA{A: 0xff}

// Preview rasterizes the line-list draws of the last finished frame into a
// width x height image. Attribute 0 of each draw's input layout is read as
// the position and attribute 1 as the color; the vertex-stage constant
// buffer in slot 0, if present, is used as the view-projection matrix.
// Segments are drawn one pixel wide and clipped to the view volume in X and
// Y.
func (d *Device) Preview(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(PreviewBackground), image.Point{}, draw.Src)
	if width <= 0 || height <= 0 {
		return img
	}

	z := vector.NewRasterizer(width, height)
	for i := range d.last {
		dr := &d.last[i]
		desc := dr.Pipeline.desc
		if desc.Topology != gputypes.PrimitiveTopologyLineList || desc.InputLayout == nil {
			continue
		}
		viewProj := mgl32.Ident4()
		if len(dr.Constants) >= 64 {
			viewProj = decodeMat4(dr.Constants)
		}
		layout := desc.InputLayout.Layout
		n := int(dr.NumVertices)
		for v := 0; v+1 < n; v += 2 {
			a, ca, okA := readVertex(dr.Vertices, layout, v)
			b, _, okB := readVertex(dr.Vertices, layout, v+1)
			if !okA || !okB {
				break
			}
			p0, ok0 := project(viewProj, a)
			p1, ok1 := project(viewProj, b)
			if !ok0 || !ok1 {
				continue
			}
			p0, p1, ok := clipSegment(p0, p1)
			if !ok {
				continue
			}
			strokeSegment(z, img, toPixels(p0, width, height), toPixels(p1, width, height), ca)
		}
	}
	return img
}

// WritePNG encodes Preview(width, height) as PNG.
func (d *Device) WritePNG(w io.Writer, width, height int) error {
	return png.Encode(w, d.Preview(width, height))
}

func decodeMat4(data []byte) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return m
}

// readVertex decodes position and color of vertex i.
func readVertex(data []byte, layout gpucore.VertexLayout, i int) (mgl32.Vec3, mgl32.Vec4, bool) {
	base := uint64(i) * layout.Stride //nolint:gosec // G115: i is non-negative
	if layout.Stride == 0 || base+layout.Stride > uint64(len(data)) {
		return mgl32.Vec3{}, mgl32.Vec4{}, false
	}
	rec := data[base : base+layout.Stride]
	readFloats := func(attr gpucore.VertexAttribute, dst []float32) bool {
		if attr.Offset+uint64(len(dst))*4 > uint64(len(rec)) {
			return false
		}
		for j := range dst {
			dst[j] = math.Float32frombits(binary.LittleEndian.Uint32(rec[attr.Offset+uint64(j)*4:])) //nolint:gosec // G115: j < 4
		}
		return true
	}

	var pos mgl32.Vec3
	col := mgl32.Vec4{1, 1, 1, 1}
	if len(layout.Attributes) == 0 || layout.Attributes[0].Format != gputypes.VertexFormatFloat32x3 {
		return pos, col, false
	}
	if !readFloats(layout.Attributes[0], pos[:]) {
		return pos, col, false
	}
	if len(layout.Attributes) > 1 && layout.Attributes[1].Format == gputypes.VertexFormatFloat32x4 {
		readFloats(layout.Attributes[1], col[:])
	}
	return pos, col, true
}

// project returns the normalized device coordinates of p.
func project(m mgl32.Mat4, p mgl32.Vec3) (mgl32.Vec2, bool) {
	clip := m.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 1e-6 {
		return mgl32.Vec2{}, false
	}
	return mgl32.Vec2{clip.X() / w, clip.Y() / w}, true
}

// clipSegment clips p0-p1 to the [-1, 1] square (Liang-Barsky).
func clipSegment(p0, p1 mgl32.Vec2) (mgl32.Vec2, mgl32.Vec2, bool) {
	d := p1.Sub(p0)
	t0, t1 := float32(0), float32(1)
	edges := [4][2]float32{
		{-d[0], p0[0] + 1},
		{d[0], 1 - p0[0]},
		{-d[1], p0[1] + 1},
		{d[1], 1 - p0[1]},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return p0, p1, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = max(t0, r)
		} else {
			t1 = min(t1, r)
		}
		if t0 > t1 {
			return p0, p1, false
		}
	}
	return p0.Add(d.Mul(t0)), p0.Add(d.Mul(t1)), true
}

func toPixels(ndc mgl32.Vec2, width, height int) mgl32.Vec2 {
	return mgl32.Vec2{
		(ndc[0]*0.5 + 0.5) * float32(width),
		(0.5 - ndc[1]*0.5) * float32(height),
	}
}

// strokeSegment fills a one pixel wide quad around a-b.
func strokeSegment(z *vector.Rasterizer, dst draw.Image, a, b mgl32.Vec2, c mgl32.Vec4) {
	b0 := dst.Bounds()
	z.Reset(b0.Dx(), b0.Dy())
	z.DrawOp = draw.Over

	dir := b.Sub(a)
	var n mgl32.Vec2
	if l := dir.Len(); l > 1e-6 {
		n = mgl32.Vec2{-dir[1] / l * 0.5, dir[0] / l * 0.5}
	} else {
		n = mgl32.Vec2{0, 0.5}
		a = a.Sub(mgl32.Vec2{0.5, 0})
		b = b.Add(mgl32.Vec2{0.5, 0})
	}
	z.MoveTo(a[0]+n[0], a[1]+n[1])
	z.LineTo(b[0]+n[0], b[1]+n[1])
	z.LineTo(b[0]-n[0], b[1]-n[1])
	z.LineTo(a[0]-n[0], a[1]-n[1])
	z.ClosePath()
	z.Draw(dst, b0, image.NewUniform(toNRGBA(c)), image.Point{})
}

func toNRGBA(c mgl32.Vec4) color.NRGBA {
	to8 := func(f float32) uint8 {
		return uint8(mgl32.Clamp(f, 0, 1)*255 + 0.5)
	}
	return color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3])}
}
