package geometry

import (
	"github.com/misrayazgan/RayTracer/pkg/core"
)

// Mesh is a collection of triangles with an internal BVH. Triangles live in
// the mesh's local frame; the mesh placement takes them to world space.
type Mesh struct {
	Surface
	Placement

	triangles []*Triangle
	bvh       *core.BVH
	bbox      core.AABB
}

// NewMesh builds the internal BVH over triangles that carry no placement of
// their own
func NewMesh(triangles []*Triangle, surface Surface, placement Placement) *Mesh {
	objects := make([]core.Object, len(triangles))
	for i, triangle := range triangles {
		objects[i] = triangle
	}

	bvh := core.NewBVH(objects)
	return &Mesh{
		Surface:   surface,
		Placement: placement,
		triangles: triangles,
		bvh:       bvh,
		bbox:      placement.Bounds(bvh.BoundingBox()),
	}
}

// Intersect transforms the ray once and walks the local BVH
func (m *Mesh) Intersect(ray core.Ray) (core.Hit, bool) {
	hit, ok := m.bvh.Intersect(m.ToLocal(ray))
	if !ok {
		return hit, false
	}
	hit = m.ToWorld(hit, ray.Time)
	if m.Emitter != nil {
		hit.Emitter = m.Emitter
	}
	return hit, true
}

// BoundingBox returns the world-space box of the mesh
func (m *Mesh) BoundingBox() core.AABB {
	return m.bbox
}

// Triangles returns the mesh triangles in local space
func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// LocalBVH returns the hierarchy over the untransformed triangles
func (m *Mesh) LocalBVH() *core.BVH {
	return m.bvh
}

// MeshInstance reuses the BVH of a base mesh under its own placement and
// material. The base mesh is owned by the scene's base-mesh table; many
// instances may point at the same one.
type MeshInstance struct {
	Placement
	MaterialID int

	base *Mesh
	bbox core.AABB
}

// NewMeshInstance creates an instance of base. The placement is the full
// local-to-world transform, already composed with the base transform unless
// the instance resets it.
func NewMeshInstance(base *Mesh, materialID int, placement Placement) *MeshInstance {
	return &MeshInstance{
		Placement:  placement,
		MaterialID: materialID,
		base:       base,
		bbox:       placement.Bounds(base.LocalBVH().BoundingBox()),
	}
}

// Intersect runs the ray through the shared base BVH
func (mi *MeshInstance) Intersect(ray core.Ray) (core.Hit, bool) {
	hit, ok := mi.base.LocalBVH().Intersect(mi.ToLocal(ray))
	if !ok {
		return hit, false
	}
	hit = mi.ToWorld(hit, ray.Time)
	hit.MaterialID = mi.MaterialID
	return hit, true
}

// BoundingBox returns the world-space box of the instance
func (mi *MeshInstance) BoundingBox() core.AABB {
	return mi.bbox
}

// Base returns the shared mesh
func (mi *MeshInstance) Base() *Mesh {
	return mi.base
}
