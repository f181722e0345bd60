package integrator

import (
	"math"
	"testing"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/geometry"
	"github.com/misrayazgan/RayTracer/pkg/lights"
	"github.com/misrayazgan/RayTracer/pkg/material"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

const (
	lightHeight   = 1.0
	lightHalfSize = 0.5
	lightRadiance = 10.0
)

// newLitFloorScene is a white floor under a small emissive square facing
// down, the only light in the scene
func newLitFloorScene() *scene.Scene {
	s := scene.New()
	s.MaxRecursionDepth = 1
	s.Materials = []material.Material{diffuse(1)}

	emission := &core.Emission{Radiance: core.NewVec3(lightRadiance, lightRadiance, lightRadiance)}
	panel := horizontalQuad(lightHeight, lightHalfSize, false, geometry.Surface{Emitter: emission})
	floor := horizontalQuad(0, 10, true, geometry.Surface{})

	s.Objects = []core.Object{floor, panel}
	s.Lights = []lights.Light{lights.NewMeshLight(panel, s.ShadowRayEpsilon)}
	s.Build()
	return s
}

// expectedFloorIrradiance integrates L cosθ cosθ' / r² over the light
// square for the floor point at the origin
func expectedFloorIrradiance() float64 {
	const n = 400
	step := 2 * lightHalfSize / n
	h := lightHeight

	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := -lightHalfSize + (float64(i)+0.5)*step
			z := -lightHalfSize + (float64(j)+0.5)*step
			r2 := x*x + z*z + h*h
			sum += h * h / (r2 * r2) * step * step
		}
	}
	return lightRadiance * sum
}

// estimateFloor averages the path tracer's color at the origin of the floor
func estimateFloor(s *scene.Scene, params scene.RendererParams, samples int, seed int64) float64 {
	camera := newTestCamera()
	camera.Mode = scene.RenderPathTracing
	camera.Params = params
	pt := NewPathTracingIntegrator(s, camera)

	sampler := core.NewSeededSampler(seed)
	ray := core.NewRay(core.NewVec3(2, 0.5, 0), core.NewVec3(-2, -0.5, 0).Normalize())

	sum := 0.0
	for i := 0; i < samples; i++ {
		sum += pt.RayColor(ray, s.MaxRecursionDepth, Pixel{}, sampler).X
	}
	return sum / float64(samples)
}

func TestPathTracing_MatchesAnalyticIrradiance(t *testing.T) {
	expected := expectedFloorIrradiance()
	s := newLitFloorScene()

	tests := []struct {
		name      string
		params    scene.RendererParams
		samples   int
		tolerance float64
	}{
		{"next event estimation", scene.RendererParams{NextEventEstimation: true}, 20000, 0.03},
		{"next event estimation with importance sampling", scene.RendererParams{NextEventEstimation: true, ImportanceSampling: true}, 20000, 0.03},
		{"importance sampled bounces only", scene.RendererParams{ImportanceSampling: true}, 200000, 0.03},
		{"uniform bounces only", scene.RendererParams{}, 200000, 0.05},
		{"russian roulette", scene.RendererParams{ImportanceSampling: true, RussianRoulette: true}, 200000, 0.05},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateFloor(s, tt.params, tt.samples, int64(100+i))
			if relative := math.Abs(got-expected) / expected; relative > tt.tolerance {
				t.Errorf("estimate %.4f vs analytic %.4f (relative error %.3f)", got, expected, relative)
			}
		})
	}
}

// With next event estimation the bounce that lands on the light must not
// add its radiance a second time
func TestPathTracing_NoDoubleCounting(t *testing.T) {
	s := newLitFloorScene()

	withNEE := estimateFloor(s, scene.RendererParams{NextEventEstimation: true, ImportanceSampling: true}, 20000, 1)
	bouncesOnly := estimateFloor(s, scene.RendererParams{ImportanceSampling: true}, 200000, 2)

	ratio := withNEE / bouncesOnly
	if math.Abs(ratio-1) > 0.05 {
		t.Errorf("NEE estimate %.4f vs bounce estimate %.4f (ratio %.3f, 2 means double counting)", withNEE, bouncesOnly, ratio)
	}
}

func TestPathTracing_LightHits(t *testing.T) {
	s := newLitFloorScene()
	camera := newTestCamera()
	up := core.NewRay(core.NewVec3(0, 0.5, 0), core.NewVec3(0, 1, 0))
	sampler := core.NewSeededSampler(1)

	tests := []struct {
		name     string
		params   scene.RendererParams
		indirect bool
		expected float64
	}{
		{"camera ray sees the light", scene.RendererParams{NextEventEstimation: true}, false, lightRadiance},
		{"indirect ray with NEE is suppressed", scene.RendererParams{NextEventEstimation: true}, true, 0},
		{"indirect ray without NEE sees the light", scene.RendererParams{}, true, lightRadiance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera.Params = tt.params
			pt := NewPathTracingIntegrator(s, camera)
			ray := up
			ray.Indirect = tt.indirect
			if got := pt.RayColor(ray, 0, Pixel{}, sampler); got.X != tt.expected {
				t.Errorf("color = %v, want %v", got.X, tt.expected)
			}
		})
	}
}

func TestPathTracing_DepthTermination(t *testing.T) {
	s := newLitFloorScene()
	camera := newTestCamera()
	camera.Params = scene.RendererParams{ImportanceSampling: true}
	pt := NewPathTracingIntegrator(s, camera)
	sampler := core.NewSeededSampler(42)

	// Without bounces or light samples the floor only sees ambient light
	ray := core.NewRay(core.NewVec3(2, 0.5, 0), core.NewVec3(-2, -0.5, 0).Normalize())
	for i := 0; i < 100; i++ {
		if color := pt.RayColor(ray, 0, Pixel{}, sampler); !color.IsZero() {
			t.Fatalf("depth 0 color = %v, want black", color)
		}
	}
}

func TestPathTracing_MissedRay(t *testing.T) {
	s := newSphereScene()
	camera := newTestCamera()
	camera.Mode = scene.RenderPathTracing
	pt := New(s, camera)

	if _, ok := pt.(*PathTracingIntegrator); !ok {
		t.Fatalf("New returned %T, want a path tracer", pt)
	}

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	if got := pt.RayColor(ray, s.MaxRecursionDepth, Pixel{}, core.NewSeededSampler(1)); got != s.BackgroundColor {
		t.Errorf("primary miss = %v, want background %v", got, s.BackgroundColor)
	}
	if got := pt.RayColor(ray, s.MaxRecursionDepth-1, Pixel{}, core.NewSeededSampler(1)); !got.IsZero() {
		t.Errorf("secondary miss = %v, want black", got)
	}
}

func TestPathTracing_SphereTopBrighterThanSide(t *testing.T) {
	s := newSphereScene()
	camera := newTestCamera()
	camera.Mode = scene.RenderPathTracing
	camera.Params = scene.RendererParams{NextEventEstimation: true}
	pt := New(s, camera)
	sampler := core.NewSeededSampler(3)

	top := pt.RayColor(camera.Ray(50, 30, 0, 0, 0), s.MaxRecursionDepth, Pixel{50, 30}, sampler)
	side := pt.RayColor(camera.Ray(70, 50, 0, 0, 0), s.MaxRecursionDepth, Pixel{70, 50}, sampler)
	if top.Luminance() <= side.Luminance() {
		t.Errorf("top %v should be brighter than side %v", top, side)
	}
}
