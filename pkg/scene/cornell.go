package scene

import (
	"fmt"
	"sort"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/geometry"
	"github.com/misrayazgan/RayTracer/pkg/lights"
	"github.com/misrayazgan/RayTracer/pkg/material"
)

var builtins = map[string]func() *Scene{
	"cornell": NewCornellScene,
}

// Builtin returns one of the scenes compiled into the binary
func Builtin(name string) (*Scene, error) {
	create, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in scene %q (available: %v)", name, BuiltinNames())
	}
	return create(), nil
}

// BuiltinNames lists the built-in scenes in alphabetical order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCornellScene creates a classic Cornell box with a ceiling light mesh,
// a mirror sphere and a glass sphere, rendered by the path tracer
func NewCornellScene() *Scene {
	s := New()
	s.MaxRecursionDepth = 8

	camera := NewLookAtCamera(
		core.NewVec3(278, 278, -800), // outside the box looking in
		core.NewVec3(278, 278, 0),
		core.NewVec3(0, 1, 0),
		40, 1, 400, 400,
	)
	camera.ImageName = "cornell.png"
	camera.Samples = 100
	camera.Mode = RenderPathTracing
	camera.Params = RendererParams{NextEventEstimation: true, ImportanceSampling: true, RussianRoulette: true}
	camera.Tonemap = &Tonemap{Operator: TonemapPhotographic, Key: 0.18, Burn: 1, Saturation: 1, Gamma: 2.2}
	s.Cameras = []*Camera{camera}

	const (
		white = iota
		red
		green
		mirror
		glass
	)
	s.Materials = []material.Material{
		diffuseMaterial(0.73, 0.73, 0.73),
		diffuseMaterial(0.65, 0.05, 0.05),
		diffuseMaterial(0.12, 0.45, 0.15),
		mirrorMaterial(core.NewVec3(0.8, 0.8, 0.9)),
		glassMaterial(1.5),
	}

	// standard 555 unit box, each quad wound so its normal faces inside
	const boxSize = 555.0
	x := core.NewVec3(boxSize, 0, 0)
	y := core.NewVec3(0, boxSize, 0)
	z := core.NewVec3(0, 0, boxSize)

	walls := []struct {
		corner, u, v core.Vec3
		materialID   int
	}{
		{core.NewVec3(0, 0, 0), z, x, white},       // floor
		{core.NewVec3(0, boxSize, 0), x, z, white}, // ceiling
		{core.NewVec3(0, 0, boxSize), y, x, white}, // back wall
		{core.NewVec3(0, 0, 0), y, z, red},         // left wall
		{core.NewVec3(boxSize, 0, 0), z, y, green}, // right wall
	}
	for _, wall := range walls {
		s.Objects = append(s.Objects, s.quadMesh(wall.corner, wall.u, wall.v, geometry.Surface{MaterialID: wall.materialID}))
	}

	// ceiling light, slightly below the ceiling and facing down
	lightSize := 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	emission := &core.Emission{Radiance: core.NewVec3(15, 15, 15)}
	panel := s.quadMesh(
		core.NewVec3(lightOffset, boxSize-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		geometry.Surface{MaterialID: white, Emitter: emission},
	)
	s.Objects = append(s.Objects, panel)
	s.Lights = append(s.Lights, lights.NewMeshLight(panel, s.ShadowRayEpsilon))

	s.Objects = append(s.Objects,
		geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, geometry.Surface{MaterialID: mirror}, geometry.Identity()),
		geometry.NewSphere(core.NewVec3(370, 90, 351), 90, geometry.Surface{MaterialID: glass}, geometry.Identity()),
	)

	s.Build()
	return s
}

// quadMesh appends the corners of the parallelogram corner, corner+u,
// corner+u+v, corner+v to the vertex table and returns it as a two
// triangle mesh with normal u x v
func (s *Scene) quadMesh(corner, u, v core.Vec3, surface geometry.Surface) *geometry.Mesh {
	first := s.Vertices.Append([]core.Vec3{
		corner,
		corner.Add(u),
		corner.Add(u).Add(v),
		corner.Add(v),
	}, nil)

	inner := geometry.Surface{MaterialID: surface.MaterialID}
	triangles := []*geometry.Triangle{
		geometry.NewTriangle(s.Vertices, [3]int{first, first + 1, first + 2}, [3]int{}, inner, geometry.ShadingFlat, geometry.Identity()),
		geometry.NewTriangle(s.Vertices, [3]int{first, first + 2, first + 3}, [3]int{}, inner, geometry.ShadingFlat, geometry.Identity()),
	}
	return geometry.NewMesh(triangles, surface, geometry.Identity())
}

func diffuseMaterial(r, g, b float64) material.Material {
	m := material.New()
	m.Diffuse = core.NewVec3(r, g, b)
	m.Finalize()
	return m
}

func mirrorMaterial(reflectance core.Vec3) material.Material {
	m := material.New()
	m.Type = material.TypeMirror
	m.Mirror = reflectance
	m.Finalize()
	return m
}

func glassMaterial(refractionIndex float64) material.Material {
	m := material.New()
	m.Type = material.TypeDielectric
	m.RefractionIndex = refractionIndex
	m.Finalize()
	return m
}
