package integrator

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/material"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing with
// optional next event estimation, cosine importance sampling and Russian
// roulette
type PathTracingIntegrator struct {
	tracer
	params scene.RendererParams
}

// NewPathTracingIntegrator creates a path tracer using the camera's
// renderer parameters
func NewPathTracingIntegrator(s *scene.Scene, camera *scene.Camera) *PathTracingIntegrator {
	pt := &PathTracingIntegrator{
		tracer: tracer{scene: s, camera: camera},
		params: camera.Params,
	}
	pt.trace = pt.RayColor
	return pt
}

// RayColor computes the color for a single ray using unidirectional path tracing
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, depth int, pixel Pixel, sampler core.Sampler) core.Vec3 {
	hit, ok := pt.scene.Intersect(ray)
	if !ok {
		return pt.background(ray, depth, pixel)
	}

	if hit.IsLight() {
		// Already counted by the light sample taken at the previous bounce
		if pt.params.NextEventEstimation && ray.Indirect {
			return core.Vec3{}
		}
		return hit.Emitter.Radiance
	}
	if color, ok := unlitColor(hit); ok {
		return color
	}

	m := pt.shadingMaterial(hit)

	var color core.Vec3
	if !ray.Inside {
		color = m.Ambient.MultiplyVec(pt.scene.AmbientLight)
		if pt.params.NextEventEstimation {
			color = color.Add(pt.calculateDirectLighting(ray, hit, &m, sampler))
		}
		color = color.Add(pt.calculateIndirectLighting(ray, hit, &m, depth, pixel, sampler))
	}

	return color.Add(pt.calculateSpecularColor(ray, hit, &m, depth, pixel, sampler))
}

// calculateIndirectLighting follows one bounce sampled over the hemisphere
// and divides by its density. With Russian roulette the depth limit is
// lifted and paths end with probability 1 - cosθ instead.
func (pt *PathTracingIntegrator) calculateIndirectLighting(ray core.Ray, hit core.Hit, m *material.Material, depth int, pixel Pixel, sampler core.Sampler) core.Vec3 {
	if !pt.params.RussianRoulette && depth <= 0 {
		return core.Vec3{}
	}

	wi, _ := core.SampleHemisphere(hit.Normal, sampler.Get2D(), pt.params.ImportanceSampling)

	cosTheta := math.Max(0.001, wi.Dot(hit.Normal))
	q := 1 - cosTheta
	if pt.params.RussianRoulette && sampler.Get1D() <= q {
		return core.Vec3{}
	}

	bounce := core.Ray{
		Origin:    pt.offset(hit.Point, hit.Normal),
		Direction: wi,
		Time:      ray.Time,
		Indirect:  true,
	}
	incoming := pt.RayColor(bounce, depth-1, pixel, sampler)
	color := pt.shade(ray, hit, m, wi, incoming)

	pdf := 1 / (2 * math.Pi)
	if pt.params.ImportanceSampling {
		pdf = cosTheta / math.Pi
	}
	color = color.Divide(pdf)

	if pt.params.RussianRoulette {
		color = color.Divide(1 - q)
	}
	return color
}
