package integrator

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/lights"
	"github.com/misrayazgan/RayTracer/pkg/material"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

// Pixel is the image pixel a primary ray was generated for. Only misses of
// primary rays look at it, to index the background texture.
type Pixel struct {
	X, Y int
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the color carried back along ray. depth is the number
	// of bounces still allowed; primary rays start at the scene's maximum
	// recursion depth. The sampler belongs to the calling worker.
	RayColor(ray core.Ray, depth int, pixel Pixel, sampler core.Sampler) core.Vec3
}

// New returns the integrator the camera is configured for
func New(s *scene.Scene, camera *scene.Camera) Integrator {
	if camera.Mode == scene.RenderPathTracing {
		return NewPathTracingIntegrator(s, camera)
	}
	return NewRayTracingIntegrator(s, camera)
}

// tracer holds the shading steps both integrators share. trace is the
// owning integrator's RayColor, used for secondary rays.
type tracer struct {
	scene  *scene.Scene
	camera *scene.Camera
	trace  func(ray core.Ray, depth int, pixel Pixel, sampler core.Sampler) core.Vec3
}

// background is what a ray that hits nothing returns: the scene background
// for primary rays, black for everything else
func (t *tracer) background(ray core.Ray, depth int, pixel Pixel) core.Vec3 {
	if depth == t.scene.MaxRecursionDepth {
		return t.scene.Background(pixel.X, pixel.Y, ray.Direction)
	}
	return core.Vec3{}
}

// unlitColor returns the raw texture color of replace_all surfaces
func unlitColor(hit core.Hit) (core.Vec3, bool) {
	if hit.Texture == nil || hit.Texture.Decal() != core.DecalReplaceAll {
		return core.Vec3{}, false
	}
	return hit.Texture.Color(hit.UV, hit.Point), true
}

// shadingMaterial looks up the hit material, degammaed when the camera
// tonemaps and the material asks for it
func (t *tracer) shadingMaterial(hit core.Hit) material.Material {
	m := t.scene.Material(hit.MaterialID)
	if m.Degamma && t.camera.Tonemap != nil && t.camera.Tonemap.Operator != scene.TonemapNone {
		m = m.Degammaed(t.camera.Tonemap.Gamma)
	}
	return m
}

// shade applies the material's BRDF, or the built-in diffuse and specular
// model, to light arriving from wi
func (t *tracer) shade(ray core.Ray, hit core.Hit, m *material.Material, wi, irradiance core.Vec3) core.Vec3 {
	wo := ray.Origin.Subtract(hit.Point).Normalize()
	if brdf := t.scene.BRDF(m); brdf != nil {
		return brdf.Evaluate(m, hit.Normal, wi, wo, irradiance)
	}
	return m.Shade(hit, wi, wo, irradiance)
}

// offset moves a point off the surface along dir to avoid self-intersection
func (t *tracer) offset(point, dir core.Vec3) core.Vec3 {
	return point.Add(dir.Multiply(t.scene.ShadowRayEpsilon))
}

// inShadow casts a shadow ray toward the light sample. Hits on the sampled
// emitter itself and hits beyond the light do not block it.
func (t *tracer) inShadow(ray core.Ray, hit core.Hit, sample lights.LightSample) bool {
	shadowRay := core.Ray{
		Origin:    t.offset(hit.Point, hit.Normal),
		Direction: sample.Wi,
		Time:      ray.Time,
	}

	blocker, ok := t.scene.Intersect(shadowRay)
	if !ok {
		return false
	}
	if sample.Emitter != nil && blocker.Emitter == sample.Emitter {
		return false
	}
	return blocker.T > 0 && blocker.T < sample.Distance-t.scene.IntersectionEpsilon
}

// calculateDirectLighting takes one sample of every light and shades the
// unoccluded ones
func (t *tracer) calculateDirectLighting(ray core.Ray, hit core.Hit, m *material.Material, sampler core.Sampler) core.Vec3 {
	var color core.Vec3
	for _, light := range t.scene.Lights {
		sample := light.Sample(hit.Point, hit.Normal, sampler)
		if sample.IsBlack() || t.inShadow(ray, hit, sample) {
			continue
		}
		color = color.Add(t.shade(ray, hit, m, sample.Wi, sample.Irradiance))
	}
	return color
}

// calculateSpecularColor follows the mirror, dielectric or conductor
// bounce of the material while depth remains
func (t *tracer) calculateSpecularColor(ray core.Ray, hit core.Hit, m *material.Material, depth int, pixel Pixel, sampler core.Sampler) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}

	switch m.Type {
	case material.TypeMirror:
		return t.reflectionColor(ray, hit, m, depth, pixel, sampler)
	case material.TypeDielectric:
		return t.refractionColor(ray, hit, m, depth, pixel, sampler)
	case material.TypeConductor:
		cosTheta := -ray.Direction.Dot(hit.Normal)
		fr := material.FresnelConductor(cosTheta, m.RefractionIndex, m.AbsorptionIndex)
		return t.reflectionColor(ray, hit, m, depth, pixel, sampler).Multiply(fr)
	}
	return core.Vec3{}
}

// reflectionColor traces the mirror direction, perturbed inside a square of
// side Roughness for glossy materials. A perturbed direction that points
// into the surface carries no light.
func (t *tracer) reflectionColor(ray core.Ray, hit core.Hit, m *material.Material, depth int, pixel Pixel, sampler core.Sampler) core.Vec3 {
	wo := ray.Origin.Subtract(hit.Point).Normalize()
	wr := core.Reflect(wo, hit.Normal).Normalize()

	if m.RoughnessExists {
		u, v := core.OrthonormalBasis(wr)
		du := core.Centered(sampler) * m.Roughness
		dv := core.Centered(sampler) * m.Roughness
		wr = wr.Add(u.Multiply(du)).Add(v.Multiply(dv)).Normalize()
		if wr.Dot(hit.Normal) <= 0 {
			return core.Vec3{}
		}
	}

	mirrorRay := core.Ray{
		Origin:    t.offset(hit.Point, hit.Normal),
		Direction: wr,
		Time:      ray.Time,
	}
	return m.Mirror.MultiplyVec(t.trace(mirrorRay, depth-1, pixel, sampler))
}

// refractionColor splits the ray at a dielectric boundary into reflected
// and transmitted parts by the Fresnel ratio. Light travelling inside is
// attenuated by Beer-Lambert absorption over the distance covered.
func (t *tracer) refractionColor(ray core.Ray, hit core.Hit, m *material.Material, depth int, pixel Pixel, sampler core.Sampler) core.Vec3 {
	wo := ray.Origin.Subtract(hit.Point).Normalize()
	wr := core.Reflect(wo, hit.Normal).Normalize()

	n1, n2 := 1.0, m.RefractionIndex
	cosTheta := -ray.Direction.Dot(hit.Normal)
	entering := cosTheta > 0

	var wt core.Vec3
	var refracted bool
	transparency := core.NewVec3(1, 1, 1)
	if entering {
		wt, refracted = refract(ray.Direction, hit.Normal, n1, n2)
	} else {
		cosTheta = math.Abs(cosTheta)
		n1, n2 = n2, n1
		wt, refracted = refract(ray.Direction, hit.Normal.Negate(), n1, n2)
		transparency = m.Absorption.Multiply(-hit.T).Exp()
	}

	fr := material.FresnelDielectric(cosTheta, n1, n2)
	if !refracted || fr >= 1 {
		// Total internal reflection keeps the ray inside
		reflected := core.Ray{Origin: t.offset(hit.Point, wr), Direction: wr, Inside: true, Time: ray.Time}
		return transparency.MultiplyVec(t.trace(reflected, depth-1, pixel, sampler))
	}

	refractedRay := core.Ray{Origin: t.offset(hit.Point, wt), Direction: wt, Inside: entering, Time: ray.Time}
	reflectedRay := core.Ray{Origin: t.offset(hit.Point, wr), Direction: wr, Inside: !entering, Time: ray.Time}

	refraction := t.trace(refractedRay, depth-1, pixel, sampler).Multiply(1 - fr)
	reflection := t.trace(reflectedRay, depth-1, pixel, sampler).Multiply(fr)
	return transparency.MultiplyVec(reflection.Add(refraction))
}

// refract bends direction d through a surface with normal n facing d's
// origin, going from index n1 to n2. It fails on total internal reflection.
func refract(d, n core.Vec3, n1, n2 float64) (core.Vec3, bool) {
	cosTheta := -d.Dot(n)
	ratio := n1 / n2
	k := 1 - ratio*ratio*(1-cosTheta*cosTheta)
	if k < 0 {
		return core.Vec3{}, false
	}
	wt := d.Add(n.Multiply(cosTheta)).Multiply(ratio).Subtract(n.Multiply(math.Sqrt(k)))
	return wt.Normalize(), true
}
