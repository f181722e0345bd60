package lights

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// AreaLight is a square emitter of side Extent centered at Position.
// It is not part of the geometry, so camera rays never see it.
type AreaLight struct {
	Position core.Vec3
	Normal   core.Vec3
	Extent   float64
	Radiance core.Vec3

	u, v core.Vec3
}

// NewAreaLight creates a square area light facing normal
func NewAreaLight(position, normal core.Vec3, extent float64, radiance core.Vec3) *AreaLight {
	n := normal.Normalize()
	u, v := core.OrthonormalBasis(n)
	return &AreaLight{
		Position: position,
		Normal:   n,
		Extent:   extent,
		Radiance: radiance,
		u:        u,
		v:        v,
	}
}

func (al *AreaLight) Type() LightType {
	return LightTypeArea
}

// Sample picks a uniform point on the square and converts its radiance to
// irradiance through the solid angle the square covers from point
func (al *AreaLight) Sample(point, normal core.Vec3, sampler core.Sampler) LightSample {
	e1 := core.Centered(sampler)
	e2 := core.Centered(sampler)
	onLight := al.Position.Add(al.u.Multiply(e1 * al.Extent)).Add(al.v.Multiply(e2 * al.Extent))

	toLight := onLight.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{Wi: normal, Distance: 0}
	}
	wi := toLight.Divide(distance)

	// The square emits from both sides
	cosLight := math.Abs(wi.Negate().Dot(al.Normal))
	solidAngle := al.Extent * al.Extent * cosLight / (distance * distance)

	return LightSample{
		Wi:         wi,
		Distance:   distance,
		Irradiance: al.Radiance.Multiply(solidAngle),
	}
}
