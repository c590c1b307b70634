package debugdraw

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/debugdraw/cache"
	"github.com/gogpu/debugdraw/recording"
)

// newTestRenderer creates a renderer on an 800x600 recording device.
func newTestRenderer(t *testing.T, opts ...Option) (*LineRenderer, *recording.Device, *cache.Resources) {
	t.Helper()
	dev := recording.NewDevice(800, 600)
	rc := cache.NewResources(dev)
	lr, err := NewLineRenderer(dev, rc, opts...)
	if err != nil {
		t.Fatalf("NewLineRenderer failed: %v", err)
	}
	t.Cleanup(func() {
		lr.Destroy()
		rc.Close()
	})
	return lr, dev, rc
}

func positions(vs []Vertex) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(vs))
	for i, v := range vs {
		out[i] = v.Position
	}
	return out
}

func assertPositions(t *testing.T, got []Vertex, want []mgl32.Vec3) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d vertices, want %d", len(got), len(want))
	}
	for i := range want {
		if !vec3Near(got[i].Position, want[i], 1e-5) {
			t.Errorf("vertex %d = %v, want %v", i, got[i].Position, want[i])
		}
	}
}

// vec3Near compares each component with an absolute tolerance. The
// relative comparison of mgl32 rejects float32 residue next to zero.
func vec3Near(a, b mgl32.Vec3, tol float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
