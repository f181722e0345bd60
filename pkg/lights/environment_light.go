package lights

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// EnvironmentLight surrounds the scene with a latitude-longitude image
type EnvironmentLight struct {
	Map core.Texture
}

// NewEnvironmentLight creates a spherical directional light from an
// equirectangular texture
func NewEnvironmentLight(environment core.Texture) *EnvironmentLight {
	return &EnvironmentLight{Map: environment}
}

func (el *EnvironmentLight) Type() LightType {
	return LightTypeInfinite
}

// Sample draws a uniform direction in the hemisphere around normal by
// rejection and divides the looked-up radiance by the 1/2π density
func (el *EnvironmentLight) Sample(point, normal core.Vec3, sampler core.Sampler) LightSample {
	l := core.SampleInHemisphereRejection(normal, sampler)
	return LightSample{
		Wi:         l,
		Distance:   math.Inf(1),
		Irradiance: el.Radiance(l).Multiply(2 * math.Pi),
	}
}

// Radiance looks up the environment in the given direction. It is also what
// primary rays see when they leave the scene.
func (el *EnvironmentLight) Radiance(direction core.Vec3) core.Vec3 {
	d := direction.Normalize()
	theta := math.Acos(math.Max(-1, math.Min(1, d.Y)))
	phi := math.Atan2(d.Z, d.X)
	uv := core.NewVec2((math.Pi-phi)/(2*math.Pi), theta/math.Pi)
	return el.Map.Color(uv, core.Vec3{})
}
