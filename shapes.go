package debugdraw

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AddTriangle appends the edges p0-p1, p0-p2 and p1-p2.
func (r *LineRenderer) AddTriangle(p0, p1, p2 mgl32.Vec3, color mgl32.Vec4) {
	r.AddLine(V(p0, color), V(p1, color))
	r.AddLine(V(p0, color), V(p2, color))
	r.AddLine(V(p1, color), V(p2, color))
}

// AddPointLocator appends an axis cross centered at center with arms of
// length size: the Z axis from +z to -z, the X axis from +x to -x, and the
// Y axis from -y to +y.
func (r *LineRenderer) AddPointLocator(center mgl32.Vec3, size float32, color mgl32.Vec4) {
	x, y, z := center[0], center[1], center[2]
	r.AddLine(V(mgl32.Vec3{x, y, z + size}, color), V(mgl32.Vec3{x, y, z - size}, color))
	r.AddLine(V(mgl32.Vec3{x + size, y, z}, color), V(mgl32.Vec3{x - size, y, z}, color))
	r.AddLine(V(mgl32.Vec3{x, y - size, z}, color), V(mgl32.Vec3{x, y + size, z}, color))
}

// AddAABB appends the box with the given center and uniform half extent.
func (r *LineRenderer) AddAABB(center mgl32.Vec3, halfExtent float32, color mgl32.Vec4) {
	r.AddAABBVec(center, mgl32.Vec3{halfExtent, halfExtent, halfExtent}, color)
}

// AddAABBVec appends the box with the given center and per-axis half extent.
func (r *LineRenderer) AddAABBVec(center, halfExtent mgl32.Vec3, color mgl32.Vec4) {
	r.AddAABBMinMax(center.Sub(halfExtent), center.Add(halfExtent), color)
}

// AddAABBMinMax appends the 12 edges of the box spanning min..max: the
// bottom loop at min.z, the top loop at max.z, then the four verticals.
// Degenerate boxes still produce 12 segments.
func (r *LineRenderer) AddAABBMinMax(min, max mgl32.Vec3, color mgl32.Vec4) {
	corners := [4][2]float32{
		{min[0], min[1]},
		{max[0], min[1]},
		{max[0], max[1]},
		{min[0], max[1]},
	}
	at := func(i int, z float32) Vertex {
		return V(mgl32.Vec3{corners[i][0], corners[i][1], z}, color)
	}
	for _, z := range [2]float32{min[2], max[2]} {
		for i := range 4 {
			r.AddLine(at(i, z), at((i+1)%4, z))
		}
	}
	for i := range 4 {
		r.AddLine(at(i, min[2]), at(i, max[2]))
	}
}

// AddRingZ appends a closed ring of segments in the plane z = center.z.
// Point i lies at (r*sin(i*step), r*cos(i*step)) around center, with
// step = 2π/segments.
func (r *LineRenderer) AddRingZ(center mgl32.Vec3, radius float32, color mgl32.Vec4, segments int) error {
	if segments < 2 {
		return ErrInvalidSegmentCount
	}
	step := 2 * math32.Pi / float32(segments)
	point := func(i int) Vertex {
		s, c := math32.Sincos(step * float32(i))
		return V(mgl32.Vec3{radius*s + center[0], radius*c + center[1], center[2]}, color)
	}
	first := point(0)
	prev := first
	for i := 1; i < segments; i++ {
		p := point(i)
		r.AddLine(prev, p)
		prev = p
	}
	r.AddLine(prev, first)
	return nil
}

// AddLineStrip joins consecutive points. Fewer than 2 points draw nothing.
func (r *LineRenderer) AddLineStrip(points []mgl32.Vec3, color mgl32.Vec4) {
	for i := 1; i < len(points); i++ {
		r.AddLine(V(points[i-1], color), V(points[i], color))
	}
}

// AddLineLoop joins consecutive points and closes the loop from the last
// point back to the first. Fewer than 2 points draw nothing.
func (r *LineRenderer) AddLineLoop(points []mgl32.Vec3, color mgl32.Vec4) {
	if len(points) < 2 {
		return
	}
	r.AddLineStrip(points, color)
	r.AddLine(V(points[len(points)-1], color), V(points[0], color))
}

// AddPlane appends the outline of a square patch of the plane
// a*x + b*y + c*z + d = 0, given as (a, b, c, d). The square is centered on
// the projection of origin onto the plane and extends size along two
// orthogonal in-plane axes.
func (r *LineRenderer) AddPlane(plane mgl32.Vec4, origin mgl32.Vec3, size float32, color mgl32.Vec4) error {
	n := plane.Vec3()
	length := n.Len()
	if length == 0 {
		return ErrDegeneratePlane
	}
	n = n.Mul(1 / length)
	dist := n.Dot(origin) + plane[3]/length
	center := origin.Sub(n.Mul(dist))

	helper := mgl32.Vec3{0, 0, 1}
	if math32.Abs(n[2]) > 0.9 {
		helper = mgl32.Vec3{1, 0, 0}
	}
	u := n.Cross(helper).Normalize().Mul(size)
	v := n.Cross(u)

	r.AddLineLoop([]mgl32.Vec3{
		center.Sub(u).Sub(v),
		center.Add(u).Sub(v),
		center.Add(u).Add(v),
		center.Sub(u).Add(v),
	}, color)
	return nil
}

// PlotNumbers appends a line graph of values. Sample i is placed at
// location + direction*(i*distance), raised along Z by values[i]*heightScale.
func (r *LineRenderer) PlotNumbers(values []float32, location, direction mgl32.Vec3, distance, heightScale float32, color mgl32.Vec4) {
	if len(values) < 2 {
		return
	}
	points := make([]mgl32.Vec3, len(values))
	for i, v := range values {
		p := location.Add(direction.Mul(float32(i) * distance))
		p[2] += v * heightScale
		points[i] = p
	}
	r.AddLineStrip(points, color)
}
