package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

func TestCheckerboardTexture(t *testing.T) {
	black := core.NewVec3(0, 0, 0)
	white := core.NewVec3(1, 1, 1)
	texture := NewCheckerboardTexture(black, white, 1, 0.01, core.DecalReplaceKd)

	tests := []struct {
		name  string
		point core.Vec3
		want  core.Vec3
	}{
		{"origin cell", core.NewVec3(0.5, 0.5, 0.5), white},
		{"one step in x", core.NewVec3(1.5, 0.5, 0.5), black},
		{"one step in x and y", core.NewVec3(1.5, 1.5, 0.5), white},
		{"one step in each axis", core.NewVec3(1.5, 1.5, 1.5), black},
		{"truncation toward zero joins the cells around 0", core.NewVec3(-0.5, 0.5, 0.5), white},
		{"negative cell", core.NewVec3(-1.5, 0.5, 0.5), black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texture.Color(core.Vec2{}, tt.point); got != tt.want {
				t.Errorf("point %v: expected %v, got %v", tt.point, tt.want, got)
			}
		})
	}
}

func TestPerlinNoise_LatticeIsZero(t *testing.T) {
	noise := NewPerlinNoise(rand.New(rand.NewSource(42)))

	for _, p := range []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(3, -2, 7),
		core.NewVec3(-5, -5, -5),
	} {
		if got := noise.At(p); math.Abs(got) > 1e-12 {
			t.Errorf("noise at lattice point %v = %f, want 0", p, got)
		}
	}
}

func TestPerlinNoise_Range(t *testing.T) {
	noise := NewPerlinNoise(rand.New(rand.NewSource(7)))
	random := rand.New(rand.NewSource(8))

	nonZero := false
	for i := 0; i < 2000; i++ {
		p := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		v := noise.At(p)
		if v < -1.5 || v > 1.5 {
			t.Fatalf("noise at %v = %f out of range", p, v)
		}
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Error("noise is zero everywhere")
	}
}

func TestPerlinTexture_Conversion(t *testing.T) {
	random := rand.New(rand.NewSource(1))

	linear := NewPerlinTexture(random, NoiseLinear, 1, 1, core.DecalReplaceKd)
	if got := linear.Color(core.Vec2{}, core.NewVec3(2, 2, 2)); got != core.NewVec3(0.5, 0.5, 0.5) {
		t.Errorf("linear conversion at a lattice point: expected 0.5, got %v", got)
	}

	absval := NewPerlinTexture(random, NoiseAbsVal, 3, 1, core.DecalReplaceKd)
	for i := 0; i < 100; i++ {
		p := core.NewVec3(float64(i)*0.37, float64(i)*0.11, float64(i)*0.73)
		if v := absval.Value(p); v < 0 {
			t.Fatalf("absval conversion returned %f", v)
		}
	}
}

func TestPerlinTexture_Bump(t *testing.T) {
	frame := core.Frame{T: core.NewVec3(1, 0, 0), B: core.NewVec3(0, 0, 1), N: core.NewVec3(0, 1, 0)}
	p := core.NewVec3(0.3, 0.6, 0.2)

	flat := NewPerlinTexture(rand.New(rand.NewSource(2)), NoiseLinear, 1, 0, core.DecalBumpNormal)
	if got := flat.PerturbNormal(core.Vec2{}, p, frame); got.Subtract(frame.N).Length() > 1e-9 {
		t.Errorf("zero bump factor should keep the normal, got %v", got)
	}

	bumpy := NewPerlinTexture(rand.New(rand.NewSource(2)), NoiseLinear, 1, 0.5, core.DecalBumpNormal)
	got := bumpy.PerturbNormal(core.Vec2{}, p, frame)
	if math.Abs(got.Length()-1) > 1e-9 {
		t.Errorf("bumped normal not unit length: %v", got)
	}

	colored := NewPerlinTexture(rand.New(rand.NewSource(2)), NoiseLinear, 1, 0.5, core.DecalReplaceKd)
	if got := colored.PerturbNormal(core.Vec2{}, p, frame); got != frame.N {
		t.Errorf("color textures must not touch the normal, got %v", got)
	}
}

func TestParseDecalMode(t *testing.T) {
	for name, want := range decalModes {
		got, err := ParseDecalMode(name)
		if err != nil || got != want {
			t.Errorf("ParseDecalMode(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseDecalMode("replace_everything"); err == nil {
		t.Error("Expected an error for an unknown decal mode")
	}
}
