package integrator

import (
	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

// RayTracingIntegrator implements Whitted-style recursive ray tracing:
// direct lighting from every light plus perfect or glossy specular bounces
type RayTracingIntegrator struct {
	tracer
}

// NewRayTracingIntegrator creates a Whitted integrator for a camera
func NewRayTracingIntegrator(s *scene.Scene, camera *scene.Camera) *RayTracingIntegrator {
	rt := &RayTracingIntegrator{tracer: tracer{scene: s, camera: camera}}
	rt.trace = rt.RayColor
	return rt
}

// RayColor computes the color for a single ray
func (rt *RayTracingIntegrator) RayColor(ray core.Ray, depth int, pixel Pixel, sampler core.Sampler) core.Vec3 {
	hit, ok := rt.scene.Intersect(ray)
	if !ok {
		return rt.background(ray, depth, pixel)
	}

	if hit.IsLight() {
		return hit.Emitter.Radiance
	}
	if color, ok := unlitColor(hit); ok {
		return color
	}

	m := rt.shadingMaterial(hit)

	var color core.Vec3
	if !ray.Inside {
		color = m.Ambient.MultiplyVec(rt.scene.AmbientLight)
		color = color.Add(rt.calculateDirectLighting(ray, hit, &m, sampler))
	}

	return color.Add(rt.calculateSpecularColor(ray, hit, &m, depth, pixel, sampler))
}
