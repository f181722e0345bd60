package material

import (
	"math"
	"testing"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

func TestMaterial_Finalize(t *testing.T) {
	m := New()
	m.Diffuse = core.NewVec3(0.5, 0.5, 0.5)
	m.Finalize()

	if !m.DiffuseExists || m.SpecularExists || m.RoughnessExists {
		t.Errorf("unexpected flags: diffuse=%t specular=%t roughness=%t", m.DiffuseExists, m.SpecularExists, m.RoughnessExists)
	}
	if m.BRDF != -1 {
		t.Errorf("Expected no BRDF, got %d", m.BRDF)
	}

	m.Roughness = 0.1
	m.Specular = core.NewVec3(1, 0, 0)
	m.Finalize()
	if !m.SpecularExists || !m.RoughnessExists {
		t.Error("Expected specular and roughness flags after Finalize")
	}
}

func TestMaterial_Degammaed(t *testing.T) {
	m := New()
	m.Diffuse = core.NewVec3(0.5, 0.25, 1)
	m.Mirror = core.NewVec3(0.5, 0.5, 0.5)

	d := m.Degammaed(2.2)
	if math.Abs(d.Diffuse.X-math.Pow(0.5, 2.2)) > 1e-12 || d.Diffuse.Z != 1 {
		t.Errorf("unexpected degamma diffuse %v", d.Diffuse)
	}
	if math.Abs(d.Mirror.Y-math.Pow(0.5, 2.2)) > 1e-12 {
		t.Errorf("unexpected degamma mirror %v", d.Mirror)
	}
	if m.Diffuse.X != 0.5 {
		t.Error("Degammaed must not modify the original")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"", TypeNone, false},
		{"mirror", TypeMirror, false},
		{"conductor", TypeConductor, false},
		{"dielectric", TypeDielectric, false},
		{"glass", TypeNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaterial_Shade(t *testing.T) {
	m := New()
	m.Diffuse = core.NewVec3(0.5, 0.5, 0.5)
	m.Specular = core.NewVec3(1, 1, 1)
	m.PhongExponent = 10
	m.Finalize()

	normal := core.NewVec3(0, 1, 0)
	irradiance := core.NewVec3(100, 100, 100)
	hit := core.Hit{Normal: normal}

	// Light and viewer along the normal: full diffuse plus full highlight
	got := m.Shade(hit, normal, normal, irradiance)
	if math.Abs(got.X-150) > 1e-9 {
		t.Errorf("Expected 150, got %v", got)
	}

	// Grazing from below contributes nothing
	below := core.NewVec3(1, -1, 0).Normalize()
	if got := m.Shade(hit, below, normal, irradiance); got.X > 1e-9 {
		t.Errorf("Expected no light from below, got %v", got)
	}

	// A replace_kd texture overrides the diffuse color
	hit.Texture = NewCheckerboardTexture(core.Vec3{}, core.NewVec3(1, 0, 0), 1, 0.5, core.DecalReplaceKd)
	m.Specular = core.Vec3{}
	m.Finalize()
	got = m.Shade(hit, normal, normal, irradiance)
	if got != core.NewVec3(100, 0, 0) {
		t.Errorf("Expected texture color to replace kd, got %v", got)
	}

	// blend_kd averages the two
	hit.Texture = NewCheckerboardTexture(core.Vec3{}, core.NewVec3(1, 0, 0), 1, 0.5, core.DecalBlendKd)
	got = m.Shade(hit, normal, normal, irradiance)
	if got.Subtract(core.NewVec3(75, 25, 25)).Length() > 1e-9 {
		t.Errorf("Expected blended kd, got %v", got)
	}
}
