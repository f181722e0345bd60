package scene

import (
	"math"
	"testing"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func newTestCamera() *Camera {
	return NewCamera(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 1, 0),
		[4]float64{-1, 1, -1, 1},
		1,
		100, 100,
	)
}

// planeHit returns where a ray from the origin crosses z = -1
func planeHit(ray core.Ray) core.Vec3 {
	t := -1 / ray.Direction.Z
	return ray.At(t)
}

func TestCamera_Basis(t *testing.T) {
	camera := newTestCamera()
	u, v, w := camera.Basis()

	if !vecNear(u, core.NewVec3(1, 0, 0), 1e-9) {
		t.Errorf("u = %v, want (1,0,0)", u)
	}
	if !vecNear(v, core.NewVec3(0, 1, 0), 1e-9) {
		t.Errorf("v = %v, want (0,1,0)", v)
	}
	if !vecNear(w, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("w = %v, want (0,0,1)", w)
	}
}

func TestCamera_Ray(t *testing.T) {
	tests := []struct {
		name     string
		i, j     int
		dx, dy   float64
		expected core.Vec3 // image plane point
	}{
		{"image center", 50, 50, 0, 0, core.NewVec3(0, 0, -1)},
		{"top-left pixel center", 0, 0, 0.5, 0.5, core.NewVec3(-0.99, 0.99, -1)},
		{"bottom-right pixel center", 99, 99, 0.5, 0.5, core.NewVec3(0.99, -0.99, -1)},
	}

	camera := newTestCamera()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.Ray(tt.i, tt.j, tt.dx, tt.dy, 0.25)
			if ray.Time != 0.25 {
				t.Errorf("time = %v, want 0.25", ray.Time)
			}
			if math.Abs(ray.Direction.Length()-1) > 1e-9 {
				t.Errorf("direction %v is not unit length", ray.Direction)
			}
			if got := planeHit(ray); !vecNear(got, tt.expected, 1e-9) {
				t.Errorf("plane point = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCamera_LeftHanded(t *testing.T) {
	camera := newTestCamera()
	camera.LeftHanded = true
	camera.Setup()

	ray := camera.Ray(0, 0, 0.5, 0.5, 0)
	if got := planeHit(ray); !vecNear(got, core.NewVec3(0.99, 0.99, -1), 1e-9) {
		t.Errorf("left-handed top-left pixel maps to %v, want x mirrored", got)
	}
}

func TestNewLookAtCamera(t *testing.T) {
	camera := NewLookAtCamera(
		core.NewVec3(0, 0, 5),
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 1, 0),
		90, 1, 200, 100,
	)

	if math.Abs(camera.Top-1) > 1e-9 || math.Abs(camera.Bottom+1) > 1e-9 {
		t.Errorf("vertical extent = [%v, %v], want [-1, 1]", camera.Bottom, camera.Top)
	}
	if math.Abs(camera.Right-2) > 1e-9 || math.Abs(camera.Left+2) > 1e-9 {
		t.Errorf("horizontal extent = [%v, %v], want [-2, 2]", camera.Left, camera.Right)
	}
	if !vecNear(camera.Gaze, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("gaze = %v, want (0,0,-1)", camera.Gaze)
	}

	center := camera.Ray(100, 50, 0, 0, 0)
	if !vecNear(center.Direction, core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("center ray direction = %v, want the gaze", center.Direction)
	}
}

func TestCamera_PixelRays(t *testing.T) {
	tests := []struct {
		samples  int
		expected int
	}{
		{1, 1},
		{4, 4},
		{5, 9},
		{16, 16},
	}

	sampler := core.NewSeededSampler(7)
	for _, tt := range tests {
		camera := newTestCamera()
		camera.Samples = tt.samples

		rays := camera.PixelRays(10, 20, sampler)
		if len(rays) != tt.expected {
			t.Errorf("%d samples: got %d rays, want %d", tt.samples, len(rays), tt.expected)
			continue
		}

		// Pixel (10, 20) covers x in [-0.8, -0.78] and y in [0.58, 0.6]
		for _, ray := range rays {
			p := planeHit(ray)
			if p.X < -0.8-1e-9 || p.X > -0.78+1e-9 || p.Y < 0.58-1e-9 || p.Y > 0.6+1e-9 {
				t.Errorf("%d samples: ray lands at %v, outside the pixel", tt.samples, p)
			}
			if ray.Time < 0 || ray.Time >= 1 {
				t.Errorf("%d samples: time %v outside [0,1)", tt.samples, ray.Time)
			}
		}
	}
}

func TestCamera_SingleSampleUsesPixelCenter(t *testing.T) {
	camera := newTestCamera()
	rays := camera.PixelRays(0, 0, core.NewSeededSampler(1))
	if got := planeHit(rays[0]); !vecNear(got, core.NewVec3(-0.99, 0.99, -1), 1e-9) {
		t.Errorf("single sample lands at %v, want the pixel center", got)
	}
}

func TestCamera_DepthOfField(t *testing.T) {
	camera := newTestCamera()
	camera.FocusDistance = 5
	camera.ApertureSize = 1
	camera.Samples = 4

	if !camera.HasDepthOfField() {
		t.Fatal("expected depth of field")
	}

	focal := core.NewVec3(0, 0, -5)
	lens := camera.LensRay(50, 50, 0, 0, 0.3, -0.2, 0.5)

	if !vecNear(lens.Origin, core.NewVec3(0.3, -0.2, 0), 1e-9) {
		t.Errorf("lens origin = %v, want (0.3,-0.2,0)", lens.Origin)
	}
	toFocal := focal.Subtract(lens.Origin).Normalize()
	if !vecNear(lens.Direction, toFocal, 1e-9) {
		t.Errorf("lens ray %v misses the focal point, want direction %v", lens.Direction, toFocal)
	}

	// Every jittered lens ray stays inside the aperture
	for _, ray := range camera.PixelRays(50, 50, core.NewSeededSampler(3)) {
		if math.Abs(ray.Origin.X) > 0.5 || math.Abs(ray.Origin.Y) > 0.5 || ray.Origin.Z != 0 {
			t.Errorf("lens ray origin %v outside the aperture", ray.Origin)
		}
	}
}

func TestParseRenderMode(t *testing.T) {
	tests := []struct {
		input    string
		expected RenderMode
		wantErr  bool
	}{
		{"RayTracing", RenderRayTracing, false},
		{"DirectLighting", RenderRayTracing, false},
		{"PathTracing", RenderPathTracing, false},
		{"Photon", RenderRayTracing, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseRenderMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if mode != tt.expected {
				t.Errorf("mode = %v, want %v", mode, tt.expected)
			}
		})
	}
}
