package renderer

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

func TestClampChannel(t *testing.T) {
	tests := []struct {
		input    float64
		expected uint8
	}{
		{-5, 0},
		{0, 0},
		{12.7, 12},
		{254.9, 254},
		{255, 255},
		{1e6, 255},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := clampChannel(tt.input); got != tt.expected {
			t.Errorf("clampChannel(%v) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestLogAverage(t *testing.T) {
	tests := []struct {
		name     string
		world    []float64
		expected float64
	}{
		{"uniform", []float64{2, 2, 2}, 2 + luminanceFloor},
		{"geometric mean", []float64{1, 4}, math.Sqrt((1 + luminanceFloor) * (4 + luminanceFloor))},
		// The negative pixel has no log but is still counted
		{"undefined log counts as zero", []float64{8, 8, -1}, math.Pow(8+luminanceFloor, 2.0/3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := logAverage(tt.world); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("logAverage(%v) = %v, want %v", tt.world, got, tt.expected)
			}
		})
	}
}

func TestToneMap_NoneClamps(t *testing.T) {
	frame := NewFrame(2, 1)
	frame.Set(0, 0, core.NewVec3(300, 127.9, -1))
	frame.Set(1, 0, core.NewVec3(1, 2, 3))

	for _, tm := range []*scene.Tonemap{nil, {Operator: scene.TonemapNone, Key: 0.18, Gamma: 2.2}} {
		img := ToneMap(frame, tm)
		if c := img.NRGBAAt(0, 0); c.R != 255 || c.G != 127 || c.B != 0 || c.A != 255 {
			t.Errorf("pixel 0 = %v, want {255 127 0 255}", c)
		}
		if c := img.NRGBAAt(1, 0); c.R != 1 || c.G != 2 || c.B != 3 {
			t.Errorf("pixel 1 = %v, want {1 2 3}", c)
		}
	}
}

func TestPhotographic_UniformImageMapsToWhite(t *testing.T) {
	pixels := make([]core.Vec3, 16)
	for i := range pixels {
		pixels[i] = core.NewVec3(40, 40, 40)
	}
	tm := scene.Tonemap{Operator: scene.TonemapPhotographic, Key: 0.18, Burn: 0, Saturation: 1, Gamma: 1}

	// every pixel sits at the white point, which the operator maps to 1
	for i, c := range Photographic(pixels, tm) {
		if math.Abs(c.X-255) > 1e-6 || math.Abs(c.Y-255) > 1e-6 || math.Abs(c.Z-255) > 1e-6 {
			t.Fatalf("pixel %d = %v, want 255", i, c)
		}
	}
}

func TestPhotographic_MonotonicAndChroma(t *testing.T) {
	pixels := make([]core.Vec3, 0, 101)
	for i := 0; i <= 100; i++ {
		v := float64(i)
		pixels = append(pixels, core.NewVec3(v, v, v))
	}
	pixels = append(pixels, core.NewVec3(4, 2, 2))
	tm := scene.Tonemap{Operator: scene.TonemapPhotographic, Key: 0.18, Burn: 10, Saturation: 1, Gamma: 1}

	out := Photographic(pixels, tm)

	if !out[0].IsZero() {
		t.Errorf("black pixel mapped to %v", out[0])
	}
	for i := 1; i <= 100; i++ {
		if out[i].X < out[i-1].X {
			t.Fatalf("pixel %d (%v) darker than pixel %d (%v)", i, out[i].X, i-1, out[i-1].X)
		}
	}
	if out[100].X < 255 {
		t.Errorf("brightest pixel %v should saturate with 10%% burn", out[100].X)
	}
	if out[50].X >= 255 {
		t.Errorf("mid grey %v should not saturate", out[50].X)
	}

	red := out[len(out)-1]
	if ratio := red.X / red.Y; math.Abs(ratio-2) > 1e-9 {
		t.Errorf("red/green ratio = %v, want 2 with saturation 1", ratio)
	}
}

func TestPhotographic_GammaAndSaturation(t *testing.T) {
	pixels := []core.Vec3{core.NewVec3(1, 1, 1), core.NewVec3(8, 2, 2)}
	base := scene.Tonemap{Operator: scene.TonemapPhotographic, Key: 0.18, Burn: 0, Saturation: 1, Gamma: 1}

	linear := Photographic(pixels, base)

	gamma := base
	gamma.Gamma = 2.2
	corrected := Photographic(pixels, gamma)
	if corrected[0].X <= linear[0].X {
		t.Errorf("gamma 2.2 should brighten dark values: %v vs %v", corrected[0].X, linear[0].X)
	}

	desaturated := base
	desaturated.Saturation = 0
	grey := Photographic(pixels, desaturated)[1]
	if grey.X != grey.Y || grey.Y != grey.Z {
		t.Errorf("saturation 0 should give grey, got %v", grey)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		dir, name, expected string
	}{
		{"out", "cornellbox.ppm", filepath.Join("out", "cornellbox.png")},
		{"out", "scenes/dragon.exr", filepath.Join("out", "dragon.png")},
		{".", "spheres", "spheres.png"},
		{"renders", "bunny.png", filepath.Join("renders", "bunny.png")},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.dir, tt.name); got != tt.expected {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.expected)
		}
	}
}

func TestSavePNG(t *testing.T) {
	frame := NewFrame(3, 2)
	frame.Set(2, 1, core.NewVec3(10, 200, 400))

	path := filepath.Join(t.TempDir(), "nested", "frame.png")
	if err := SavePNG(path, frame, nil); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", b)
	}
	r, g, b, _ := img.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 200 || b>>8 != 255 {
		t.Errorf("pixel = (%d,%d,%d), want (10,200,255)", r>>8, g>>8, b>>8)
	}
}
