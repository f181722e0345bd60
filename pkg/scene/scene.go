package scene

import (
	"fmt"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/geometry"
	"github.com/misrayazgan/RayTracer/pkg/lights"
	"github.com/misrayazgan/RayTracer/pkg/material"
)

// Scene contains all the elements needed for rendering. It is built once,
// then read concurrently by every render worker and never modified.
type Scene struct {
	BackgroundColor     core.Vec3
	BackgroundTexture   *material.ImageTexture // replace_background texture, sampled per pixel
	Environment         *lights.EnvironmentLight
	ShadowRayEpsilon    float64
	IntersectionEpsilon float64
	MaxRecursionDepth   int
	AmbientLight        core.Vec3

	Materials []material.Material
	BRDFs     []material.BRDF
	Textures  []core.Texture
	Lights    []lights.Light
	Cameras   []*Camera

	Vertices   *geometry.VertexTable
	BaseMeshes []*geometry.Mesh // meshes instances may point at, by id
	Objects    []core.Object    // top-level objects, combined into BVH by Build

	BVH *core.BVH // Acceleration structure for ray-object intersection
}

// New creates an empty scene with the default globals
func New() *Scene {
	return &Scene{
		ShadowRayEpsilon:    1e-3,
		IntersectionEpsilon: geometry.IntersectionEpsilon,
		Vertices:            geometry.NewVertexTable(nil, nil),
	}
}

// Build finishes the smooth vertex normals and creates the BVH over all
// objects. It must run after the last object is added and before rendering.
func (s *Scene) Build() {
	s.Vertices.FinalizeNormals()
	s.BVH = core.NewBVH(s.Objects)
}

// Intersect returns the nearest hit along the ray
func (s *Scene) Intersect(ray core.Ray) (core.Hit, bool) {
	return s.BVH.Intersect(ray)
}

// Material returns the material with the given index
func (s *Scene) Material(id int) material.Material {
	if id < 0 || id >= len(s.Materials) {
		panic(fmt.Sprintf("material id %d out of range [0,%d)", id, len(s.Materials)))
	}
	return s.Materials[id]
}

// BRDF returns the BRDF a material refers to, or nil for the built-in model
func (s *Scene) BRDF(m *material.Material) material.BRDF {
	if m.BRDF < 0 {
		return nil
	}
	if m.BRDF >= len(s.BRDFs) {
		panic(fmt.Sprintf("brdf id %d out of range [0,%d)", m.BRDF, len(s.BRDFs)))
	}
	return s.BRDFs[m.BRDF]
}

// Background returns what a primary ray through pixel (i, j) sees when it
// leaves the scene: the background texture, the environment map or the
// background color, in that order
func (s *Scene) Background(i, j int, direction core.Vec3) core.Vec3 {
	if t := s.BackgroundTexture; t != nil {
		uv := core.NewVec2(
			float64(i%t.Width)/float64(t.Width),
			float64(j%t.Height)/float64(t.Height),
		)
		return t.Color(uv, core.Vec3{})
	}
	if s.Environment != nil {
		return s.Environment.Radiance(direction)
	}
	return s.BackgroundColor
}

// PrimitiveCount returns the number of spheres and triangles the scene
// renders, counting every mesh instance in full
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, object := range s.Objects {
		count += countPrimitives(object)
	}
	return count
}

func countPrimitives(object core.Object) int {
	switch obj := object.(type) {
	case *geometry.Mesh:
		return len(obj.Triangles())
	case *geometry.MeshInstance:
		return len(obj.Base().Triangles())
	default:
		return 1
	}
}
