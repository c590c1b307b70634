package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/cache"
	"github.com/gogpu/debugdraw/recording"
)

func newSceneRenderer(t *testing.T) *debugdraw.LineRenderer {
	t.Helper()
	dev := recording.NewDevice(64, 64)
	lr, err := debugdraw.NewLineRenderer(dev, cache.NewResources(dev))
	if err != nil {
		t.Fatal(err)
	}
	return lr
}

func TestParseSceneDefaults(t *testing.T) {
	sc, err := ParseScene([]byte("shapes: []\n"))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Width != 800 || sc.Height != 600 {
		t.Errorf("size = %dx%d, want 800x600", sc.Width, sc.Height)
	}
	c := sc.Camera
	if c.FOV != 60 || c.Near != 0.1 || c.Far != 100 || len(c.Eye) != 3 {
		t.Errorf("camera defaults not applied: %+v", c)
	}
}

func TestParseSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "shapes: [\n"},
		{"unknown type", "shapes: [{type: sphere}]"},
		{"short color", "shapes: [{type: locator, center: [0, 0, 0], color: [1, 0]}]"},
		{"line one point", "shapes: [{type: line, points: [[0, 0, 0]]}]"},
		{"triangle two points", "shapes: [{type: triangle, points: [[0, 0, 0], [1, 0, 0]]}]"},
		{"point size", "shapes: [{type: strip, points: [[0, 0], [1, 0, 0]]}]"},
		{"aabb no center", "shapes: [{type: aabb, half_extent: [1, 1, 1]}]"},
		{"aabb min only", "shapes: [{type: aabb, min: [0, 0, 0]}]"},
		{"plane size", "shapes: [{type: plane, plane: [0, 0, 1]}]"},
		{"plot no direction", "shapes: [{type: plot, center: [0, 0, 0], values: [1, 2]}]"},
		{"camera eye", "camera: {eye: [1, 2]}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScene([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestShapeVertexCounts(t *testing.T) {
	tests := []struct {
		yaml string
		want int
	}{
		{"{type: line, points: [[0, 0, 0], [1, 0, 0]]}", 2},
		{"{type: strip, points: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]}", 4},
		{"{type: loop, points: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]}", 6},
		{"{type: triangle, points: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]}", 6},
		{"{type: aabb, center: [0, 0, 0], half_extent: [1, 2, 3]}", 24},
		{"{type: aabb, min: [0, 0, 0], max: [1, 1, 1]}", 24},
		{"{type: locator, center: [0, 0, 0]}", 6},
		{"{type: ring, center: [0, 0, 0], radius: 1, segments: 8}", 16},
		{"{type: ring, center: [0, 0, 0], radius: 1}", 72},
		{"{type: plane, plane: [0, 0, 1, 0]}", 8},
		{"{type: plot, center: [0, 0, 0], direction: [1, 0, 0], values: [1, 2, 3]}", 4},
	}
	for _, tt := range tests {
		t.Run(tt.yaml, func(t *testing.T) {
			sc, err := ParseScene([]byte("shapes: [" + tt.yaml + "]"))
			if err != nil {
				t.Fatal(err)
			}
			lr := newSceneRenderer(t)
			if err := sc.Draw(lr); err != nil {
				t.Fatal(err)
			}
			if lr.Len() != tt.want {
				t.Errorf("Len = %d, want %d", lr.Len(), tt.want)
			}
		})
	}
}

func TestShapeColor(t *testing.T) {
	sc, err := ParseScene([]byte("shapes: [{type: line, points: [[0, 0, 0], [1, 0, 0]], color: [0, 1, 0, 0.5]}, {type: line, points: [[0, 0, 0], [1, 0, 0]]}]"))
	if err != nil {
		t.Fatal(err)
	}
	lr := newSceneRenderer(t)
	if err := sc.Draw(lr); err != nil {
		t.Fatal(err)
	}
	vs := lr.Vertices()
	if vs[0].Color != (mgl32.Vec4{0, 1, 0, 0.5}) || vs[2].Color != debugdraw.White {
		t.Errorf("colors = %v, %v", vs[0].Color, vs[2].Color)
	}
}

func TestShapeDrawErrors(t *testing.T) {
	for _, y := range []string{
		"{type: ring, center: [0, 0, 0], segments: 1}",
		"{type: plane, plane: [0, 0, 0, 1]}",
	} {
		sc, err := ParseScene([]byte("shapes: [" + y + "]"))
		if err != nil {
			t.Fatal(err)
		}
		if err := sc.Draw(newSceneRenderer(t)); err == nil {
			t.Errorf("%s: expected a draw error", y)
		}
	}
}

func TestDemoScene(t *testing.T) {
	sc, err := ParseScene(demoScene)
	if err != nil {
		t.Fatalf("built-in scene does not parse: %v", err)
	}
	lr := newSceneRenderer(t)
	if err := sc.Draw(lr); err != nil {
		t.Fatal(err)
	}
	if lr.Len() != 190 {
		t.Errorf("demo scene has %d vertices, want 190", lr.Len())
	}
}

// mat4Near compares each element with an absolute tolerance.
func mat4Near(a, b mgl32.Mat4, tol float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestViewProjSpin(t *testing.T) {
	sc, err := ParseScene([]byte("spin: 90\n"))
	if err != nil {
		t.Fatal(err)
	}
	target := mgl32.Vec3{}
	if !mat4Near(sc.ViewProj(0), sc.ViewProj(4), 1e-4) {
		t.Error("a full orbit should return to the start")
	}
	if mat4Near(sc.ViewProj(0), sc.ViewProj(1), 1e-4) {
		t.Error("spin did not move the camera")
	}

	// The target stays in the middle of the view.
	clip := sc.ViewProj(1).Mul4x1(target.Vec4(1))
	if x, y := clip.X()/clip.W(), clip.Y()/clip.W(); mgl32.Abs(x) > 1e-4 || mgl32.Abs(y) > 1e-4 {
		t.Errorf("target projects to (%v, %v), want the center", x, y)
	}
}

func TestRunRecording(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "preview.png")
	var trace bytes.Buffer

	err := run(config{backend: "recording", frames: 2, trace: true, output: out}, &trace)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{
		`[0] UpdateBuffer "LineBuffer" bytes=5320`,
		`[1] QueuePipeline "Line Queue"`,
		"[1] EndFrame draws=1",
	} {
		if !strings.Contains(trace.String(), want) {
			t.Errorf("trace missing %q", want)
		}
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("preview is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("preview size = %v, want 800x600", b)
	}
}

func TestRunSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	data := "width: 32\nheight: 32\nshapes:\n  - {type: locator, center: [0, 0, 0]}\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	var trace bytes.Buffer
	if err := run(config{scene: path, backend: "recording", frames: 1, trace: true}, &trace); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(trace.String(), "vertices=6") {
		t.Errorf("trace does not show the locator draw:\n%s", trace.String())
	}
}

func TestRunErrors(t *testing.T) {
	if err := run(config{backend: "recording", frames: 0}, &bytes.Buffer{}); err == nil {
		t.Error("zero frames accepted")
	}
	if err := run(config{backend: "metal", frames: 1}, &bytes.Buffer{}); err == nil {
		t.Error("unknown backend accepted")
	}
	err := run(config{scene: filepath.Join(t.TempDir(), "missing.yaml"), backend: "recording", frames: 1}, &bytes.Buffer{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing scene: err = %v, want os.ErrNotExist", err)
	}
}
