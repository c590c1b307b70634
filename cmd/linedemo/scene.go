package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/debugdraw"
	"gopkg.in/yaml.v3"
)

// Scene is a YAML scene file.
//
//	width: 800
//	height: 600
//	camera: {eye: [6, 4, 5], target: [0, 0, 0], up: [0, 0, 1], fov: 60}
//	spin: 10
//	shapes:
//	  - {type: aabb, center: [0, 0, 0], half_extent: [1, 1, 1], color: [1, 0, 0, 1]}
//	  - {type: ring, center: [0, 0, 0], radius: 2, segments: 32}
type Scene struct {
	Width  uint32  `yaml:"width"`
	Height uint32  `yaml:"height"`
	Camera Camera  `yaml:"camera"`
	Spin   float32 `yaml:"spin"` // camera orbit in degrees per frame
	Shapes []Shape `yaml:"shapes"`
}

// Camera is a perspective camera.
type Camera struct {
	Eye    []float32 `yaml:"eye"`
	Target []float32 `yaml:"target"`
	Up     []float32 `yaml:"up"`
	FOV    float32   `yaml:"fov"` // vertical, degrees
	Near   float32   `yaml:"near"`
	Far    float32   `yaml:"far"`
}

// Shape is one debug shape. Fields that do not apply to Type are ignored.
type Shape struct {
	Type       string      `yaml:"type"`
	Color      []float32   `yaml:"color"`
	Center     []float32   `yaml:"center"`
	HalfExtent []float32   `yaml:"half_extent"`
	Min        []float32   `yaml:"min"`
	Max        []float32   `yaml:"max"`
	Size       float32     `yaml:"size"`
	Radius     float32     `yaml:"radius"`
	Segments   int         `yaml:"segments"`
	Points     [][]float32 `yaml:"points"`
	Plane      []float32   `yaml:"plane"`

	Values      []float32 `yaml:"values"`
	Direction   []float32 `yaml:"direction"`
	Distance    float32   `yaml:"distance"`
	HeightScale float32   `yaml:"height_scale"`
}

var errBadVector = errors.New("wrong number of components")

// LoadScene reads a scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScene decodes a scene and fills in defaults.
func ParseScene(data []byte) (*Scene, error) {
	sc := &Scene{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	if sc.Width == 0 {
		sc.Width = 800
	}
	if sc.Height == 0 {
		sc.Height = 600
	}
	c := &sc.Camera
	if c.Eye == nil {
		c.Eye = []float32{6, 4, 5}
	}
	if c.Target == nil {
		c.Target = []float32{0, 0, 0}
	}
	if c.Up == nil {
		c.Up = []float32{0, 0, 1}
	}
	if c.FOV == 0 {
		c.FOV = 60
	}
	if c.Near == 0 {
		c.Near = 0.1
	}
	if c.Far == 0 {
		c.Far = 100
	}
	for _, v := range [][]float32{c.Eye, c.Target, c.Up} {
		if len(v) != 3 {
			return nil, fmt.Errorf("camera: %w", errBadVector)
		}
	}
	for i, s := range sc.Shapes {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, s.Type, err)
		}
	}
	return sc, nil
}

// ViewProj returns the view-projection matrix of frame.
func (sc *Scene) ViewProj(frame uint64) mgl32.Mat4 {
	c := sc.Camera
	target := vec3(c.Target)
	up := vec3(c.Up)
	angle := mgl32.DegToRad(sc.Spin) * float32(frame)
	eye := mgl32.HomogRotate3D(angle, up.Normalize()).Mul4x1(vec3(c.Eye).Sub(target).Vec4(1)).Vec3().Add(target)

	aspect := float32(sc.Width) / float32(sc.Height)
	proj := mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
	return proj.Mul4(mgl32.LookAtV(eye, target, up))
}

// Draw adds every shape to lr.
func (sc *Scene) Draw(lr *debugdraw.LineRenderer) error {
	for i := range sc.Shapes {
		if err := sc.Shapes[i].draw(lr); err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
	}
	return nil
}

func (s *Shape) validate() error {
	check := func(name string, v []float32, n int, required bool) error {
		if v == nil && !required {
			return nil
		}
		if len(v) != n {
			return fmt.Errorf("%s: %w (want %d, got %d)", name, errBadVector, n, len(v))
		}
		return nil
	}
	if err := check("color", s.Color, 4, false); err != nil {
		return err
	}
	switch s.Type {
	case "line", "strip", "loop", "triangle":
		need := 2
		if s.Type == "triangle" {
			need = 3
		}
		if len(s.Points) < need {
			return fmt.Errorf("needs at least %d points", need)
		}
		for _, p := range s.Points {
			if err := check("point", p, 3, true); err != nil {
				return err
			}
		}
		return nil
	case "aabb":
		if s.Min != nil || s.Max != nil {
			if err := check("min", s.Min, 3, true); err != nil {
				return err
			}
			return check("max", s.Max, 3, true)
		}
		if err := check("center", s.Center, 3, true); err != nil {
			return err
		}
		return check("half_extent", s.HalfExtent, 3, true)
	case "locator", "ring":
		return check("center", s.Center, 3, true)
	case "plane":
		if err := check("plane", s.Plane, 4, true); err != nil {
			return err
		}
		return check("center", s.Center, 3, false)
	case "plot":
		if err := check("center", s.Center, 3, true); err != nil {
			return err
		}
		return check("direction", s.Direction, 3, true)
	default:
		return fmt.Errorf("unknown shape type %q", s.Type)
	}
}

func (s *Shape) draw(lr *debugdraw.LineRenderer) error {
	color := debugdraw.White
	if s.Color != nil {
		color = mgl32.Vec4{s.Color[0], s.Color[1], s.Color[2], s.Color[3]}
	}
	switch s.Type {
	case "line":
		lr.AddLine(debugdraw.V(vec3(s.Points[0]), color), debugdraw.V(vec3(s.Points[1]), color))
	case "strip":
		lr.AddLineStrip(points(s.Points), color)
	case "loop":
		lr.AddLineLoop(points(s.Points), color)
	case "triangle":
		lr.AddTriangle(vec3(s.Points[0]), vec3(s.Points[1]), vec3(s.Points[2]), color)
	case "aabb":
		if s.Min != nil {
			lr.AddAABBMinMax(vec3(s.Min), vec3(s.Max), color)
		} else {
			lr.AddAABBVec(vec3(s.Center), vec3(s.HalfExtent), color)
		}
	case "locator":
		lr.AddPointLocator(vec3(s.Center), orDefault(s.Size, 1), color)
	case "ring":
		return lr.AddRingZ(vec3(s.Center), orDefault(s.Radius, 1), color, s.segments())
	case "plane":
		origin := mgl32.Vec3{}
		if s.Center != nil {
			origin = vec3(s.Center)
		}
		return lr.AddPlane(mgl32.Vec4{s.Plane[0], s.Plane[1], s.Plane[2], s.Plane[3]}, origin, orDefault(s.Size, 1), color)
	case "plot":
		lr.PlotNumbers(s.Values, vec3(s.Center), vec3(s.Direction), orDefault(s.Distance, 0.1), orDefault(s.HeightScale, 1), color)
	}
	return nil
}

func (s *Shape) segments() int {
	if s.Segments == 0 {
		// Roughly one segment per 10 degrees, more for large rings.
		return max(36, int(s.Radius*8)+1)
	}
	return s.Segments
}

func vec3(v []float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func points(ps [][]float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(ps))
	for i, p := range ps {
		out[i] = vec3(p)
	}
	return out
}

func orDefault(v, def float32) float32 {
	if v == 0 {
		return def
	}
	return v
}
