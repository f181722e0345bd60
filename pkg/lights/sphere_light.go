package lights

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/geometry"
)

// SphereLight samples an emissive sphere. The sphere itself stays in the
// scene's BVH, so camera and bounce rays hit it like any other object.
type SphereLight struct {
	*geometry.Sphere
	Epsilon float64 // offset of the ray used to find the point on the light
}

// NewSphereLight wraps a sphere whose surface carries an emission
func NewSphereLight(sphere *geometry.Sphere, epsilon float64) *SphereLight {
	if sphere.Emitter == nil {
		panic("sphere light needs an emissive sphere")
	}
	return &SphereLight{Sphere: sphere, Epsilon: epsilon}
}

func (sl *SphereLight) Type() LightType {
	return LightTypeArea
}

// Sample draws a direction uniformly inside the cone the sphere subtends at
// point, working in the sphere's local frame, and follows it to the surface
func (sl *SphereLight) Sample(point, normal core.Vec3, sampler core.Sampler) LightSample {
	transform := sl.Placement.Transform

	local := transform.InversePoint(point)
	toCenter := sl.Center.Subtract(local)
	d := toCenter.Length()
	if d <= sl.Radius {
		// Inside the light there is no cone to sample
		return LightSample{Wi: normal, Emitter: sl.Emitter}
	}

	sinThetaMax := sl.Radius / d
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMax*sinThetaMax))
	pdf := 1.0 / (2.0 * math.Pi * (1.0 - cosThetaMax))

	localDir := core.SampleCone(toCenter.Divide(d), cosThetaMax, sampler.Get2D())
	dir := transform.Vector(localDir).Normalize()

	ray := core.NewRay(point.Add(dir.Multiply(sl.Epsilon)), dir)
	hit, ok := sl.Sphere.Intersect(ray)
	if !ok {
		// Grazing directions can slip past the surface numerically
		return LightSample{Wi: dir, Emitter: sl.Emitter}
	}

	toLight := hit.Point.Subtract(point)
	distance := toLight.Length()

	return LightSample{
		Wi:         toLight.Divide(distance),
		Distance:   distance,
		Irradiance: sl.Emitter.Radiance.Divide(pdf),
		Emitter:    sl.Emitter,
	}
}
