package geometry

import (
	"github.com/misrayazgan/RayTracer/pkg/core"
)

// IntersectionEpsilon is the barycentric and t tolerance of the triangle test
const IntersectionEpsilon = 1e-6

// ShadingMode selects face or interpolated vertex normals
type ShadingMode int

const (
	ShadingFlat ShadingMode = iota
	ShadingSmooth
)

// Surface holds what a primitive reports to the shader: material, textures
// and emission
type Surface struct {
	MaterialID    int
	Texture       core.Texture // shading texture
	NormalTexture core.Texture // normal or bump map
	Emitter       *core.Emission
}

// Triangle represents a triangle referencing vertices of a VertexTable
type Triangle struct {
	Surface
	Placement
	Shading ShadingMode
	Epsilon float64

	vertices *VertexTable
	v        [3]int // vertex indices
	uv       [3]int // texture coordinate indices
	normal   core.Vec3
	frame    core.Frame
	bbox     core.AABB
}

// NewTriangle creates a triangle from three vertex indices and registers its
// face normal on those vertices for smooth shading
func NewTriangle(vertices *VertexTable, v, uv [3]int, surface Surface, shading ShadingMode, placement Placement) *Triangle {
	a := vertices.Position(v[0])
	b := vertices.Position(v[1])
	c := vertices.Position(v[2])

	normal := b.Subtract(a).Cross(c.Subtract(a)).Normalize()
	for _, index := range v {
		vertices.addFaceNormal(index, normal)
	}

	t := &Triangle{
		Surface:   surface,
		Placement: placement,
		Shading:   shading,
		Epsilon:   IntersectionEpsilon,
		vertices:  vertices,
		v:         v,
		uv:        uv,
		normal:    normal,
	}
	t.bbox = placement.Bounds(core.NewAABBFromPoints(a, b, c))
	if surface.NormalTexture != nil {
		t.frame = t.tangentFrame()
	}
	return t
}

// determinant of the 3x3 matrix with columns c0, c1, c2
func determinant(c0, c1, c2 core.Vec3) float64 {
	return c0.X*(c1.Y*c2.Z-c2.Y*c1.Z) +
		c0.Y*(c2.X*c1.Z-c1.X*c2.Z) +
		c0.Z*(c1.X*c2.Y-c1.Y*c2.X)
}

// Intersect solves o + t*d = a + beta*(b-a) + gamma*(c-a) with Cramer's rule
func (t *Triangle) Intersect(ray core.Ray) (core.Hit, bool) {
	local := t.ToLocal(ray)
	hit, ok := t.intersectLocal(local)
	if !ok {
		return hit, false
	}
	return t.ToWorld(hit, ray.Time), true
}

// solve returns the ray parameter and the barycentric coordinates of b and c
func (t *Triangle) solve(ray core.Ray) (tHit, beta, gamma float64, ok bool) {
	o := ray.Origin
	d := ray.Direction
	a, b, c := t.Vertices()

	ab := a.Subtract(b)
	ac := a.Subtract(c)
	ao := a.Subtract(o)

	detA := determinant(ab, ac, d)
	if detA == 0 {
		return 0, 0, 0, false
	}

	tHit = determinant(ab, ac, ao) / detA
	if tHit < -t.Epsilon {
		return 0, 0, 0, false
	}

	gamma = determinant(ab, ao, d) / detA
	if gamma < -t.Epsilon || gamma > 1+t.Epsilon {
		return 0, 0, 0, false
	}

	beta = determinant(ao, ac, d) / detA
	if beta < -t.Epsilon || beta > 1+t.Epsilon-gamma {
		return 0, 0, 0, false
	}

	return tHit, beta, gamma, true
}

// intersectLocal runs the barycentric test in the triangle's own space
func (t *Triangle) intersectLocal(ray core.Ray) (core.Hit, bool) {
	tHit, beta, gamma, ok := t.solve(ray)
	if !ok {
		return core.Hit{}, false
	}

	hit := core.Hit{
		T:          tHit,
		Point:      ray.At(tHit),
		Normal:     t.normal,
		MaterialID: t.MaterialID,
		Texture:    t.Texture,
		Emitter:    t.Emitter,
	}

	if t.Shading == ShadingSmooth {
		n := t.vertices.Normals
		hit.Normal = n[t.v[0]].Multiply(1 - beta - gamma).
			Add(n[t.v[1]].Multiply(beta)).
			Add(n[t.v[2]].Multiply(gamma)).
			Normalize()
	}

	if t.Texture != nil || t.NormalTexture != nil {
		hit.UV = t.texCoords(beta, gamma)
	}

	if t.NormalTexture != nil {
		switch t.NormalTexture.Decal() {
		case core.DecalReplaceNormal:
			hit.Normal = t.NormalTexture.PerturbNormal(hit.UV, hit.Point, t.frame)
		case core.DecalBumpNormal:
			frame := t.frame
			frame.N = hit.Normal
			hit.Normal = t.NormalTexture.PerturbNormal(hit.UV, hit.Point, frame)
		}
	}

	return hit, true
}

// Barycentric returns (alpha, beta, gamma) of the ray's hit, or false when
// the ray misses
func (t *Triangle) Barycentric(ray core.Ray) (float64, float64, float64, bool) {
	_, beta, gamma, ok := t.solve(t.ToLocal(ray))
	if !ok {
		return 0, 0, 0, false
	}
	return 1 - beta - gamma, beta, gamma, true
}

// texCoords interpolates the vertex texture coordinates
func (t *Triangle) texCoords(beta, gamma float64) core.Vec2 {
	uv0 := t.vertices.TexCoord(t.uv[0])
	uv1 := t.vertices.TexCoord(t.uv[1])
	uv2 := t.vertices.TexCoord(t.uv[2])
	return uv0.Add(uv1.Subtract(uv0).Multiply(beta)).Add(uv2.Subtract(uv0).Multiply(gamma))
}

// tangentFrame solves [T B]^T = inverse(dUV) * [e1 e2]^T
func (t *Triangle) tangentFrame() core.Frame {
	uv0 := t.vertices.TexCoord(t.uv[0])
	uv1 := t.vertices.TexCoord(t.uv[1])
	uv2 := t.vertices.TexCoord(t.uv[2])
	a, b, c := t.Vertices()

	e1 := b.Subtract(a)
	e2 := c.Subtract(a)

	du1, dv1 := uv1.X-uv0.X, uv1.Y-uv0.Y
	du2, dv2 := uv2.X-uv0.X, uv2.Y-uv0.Y
	det := dv2*du1 - dv1*du2
	if det == 0 {
		u, v := core.OrthonormalBasis(t.normal)
		return core.Frame{T: u, B: v, N: t.normal}
	}

	tangent := e1.Multiply(dv2 / det).Add(e2.Multiply(-dv1 / det))
	bitangent := e1.Multiply(-du2 / det).Add(e2.Multiply(du1 / det))
	return core.Frame{T: tangent, B: bitangent, N: t.normal}
}

// Vertices returns the local-space corner positions
func (t *Triangle) Vertices() (core.Vec3, core.Vec3, core.Vec3) {
	return t.vertices.Positions[t.v[0]], t.vertices.Positions[t.v[1]], t.vertices.Positions[t.v[2]]
}

// Normal returns the local-space face normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// BoundingBox returns the world-space box of the triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}
