package material

import (
	"fmt"
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// Type selects the specular behavior of a material
type Type int

const (
	TypeNone Type = iota
	TypeMirror
	TypeConductor
	TypeDielectric
)

// ParseType maps the scene-file material type attribute to a Type
func ParseType(s string) (Type, error) {
	switch s {
	case "":
		return TypeNone, nil
	case "mirror":
		return TypeMirror, nil
	case "conductor":
		return TypeConductor, nil
	case "dielectric":
		return TypeDielectric, nil
	}
	return TypeNone, fmt.Errorf("unknown material type %q", s)
}

func (t Type) String() string {
	switch t {
	case TypeMirror:
		return "mirror"
	case TypeConductor:
		return "conductor"
	case TypeDielectric:
		return "dielectric"
	}
	return "none"
}

// Material holds the reflectances and indices of a surface. Objects refer to
// materials by their index in the scene's material table.
type Material struct {
	Ambient  core.Vec3
	Diffuse  core.Vec3
	Specular core.Vec3
	Mirror   core.Vec3

	Absorption      core.Vec3 // Beer-Lambert coefficient of a dielectric
	PhongExponent   float64
	RefractionIndex float64
	AbsorptionIndex float64 // imaginary part of a conductor's refractive index
	Roughness       float64

	Type    Type
	BRDF    int  // index into the BRDF table, -1 for the built-in Blinn-Phong
	Degamma bool // raise reflectances to the tonemap gamma before shading

	DiffuseExists   bool
	SpecularExists  bool
	RoughnessExists bool
}

// New returns a material without a BRDF
func New() Material {
	return Material{PhongExponent: 1, RefractionIndex: 1, BRDF: -1}
}

// Finalize derives the existence flags. It must run once after all
// coefficients are set.
func (m *Material) Finalize() {
	m.DiffuseExists = !m.Diffuse.IsZero()
	m.SpecularExists = !m.Specular.IsZero()
	m.RoughnessExists = m.Roughness != 0
}

// Degammaed returns a copy with the reflectances raised to gamma
func (m Material) Degammaed(gamma float64) Material {
	m.Ambient = m.Ambient.Pow(gamma)
	m.Diffuse = m.Diffuse.Pow(gamma)
	m.Specular = m.Specular.Pow(gamma)
	m.Mirror = m.Mirror.Pow(gamma)
	return m
}

// DiffuseColor returns kd, replaced or blended by a color texture
func (m *Material) DiffuseColor(texture core.Texture, uv core.Vec2, point core.Vec3) core.Vec3 {
	if texture == nil {
		return m.Diffuse
	}
	switch texture.Decal() {
	case core.DecalReplaceKd:
		return texture.Color(uv, point)
	case core.DecalBlendKd:
		return m.Diffuse.Add(texture.Color(uv, point)).Divide(2)
	}
	return m.Diffuse
}

// Shade is the built-in model used when a material has no BRDF: Lambertian
// diffuse plus a Blinn-Phong highlight
func (m *Material) Shade(hit core.Hit, wi, wo, irradiance core.Vec3) core.Vec3 {
	cosTheta := wi.Dot(hit.Normal)
	if cosTheta < 0 {
		cosTheta = 0
	}
	color := m.DiffuseColor(hit.Texture, hit.UV, hit.Point).MultiplyVec(irradiance).Multiply(cosTheta)

	if m.SpecularExists {
		h := wi.Add(wo).Normalize()
		cosAlpha := hit.Normal.Dot(h)
		if cosAlpha > 0 {
			color = color.Add(m.Specular.MultiplyVec(irradiance).Multiply(math.Pow(cosAlpha, m.PhongExponent)))
		}
	}

	return color
}
