package lights

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/geometry"
)

// MeshLight samples an emissive mesh by picking triangles with probability
// proportional to their world-space area
type MeshLight struct {
	*geometry.Mesh
	Epsilon float64 // pulled off the light distance so the shadow ray stops short of the surface

	corners      [][3]core.Vec3 // world-space triangle vertices
	normals      []core.Vec3    // world-space face normals
	distribution *core.Distribution1D
}

// NewMeshLight precomputes world-space triangles and their area CDF
func NewMeshLight(mesh *geometry.Mesh, epsilon float64) *MeshLight {
	if mesh.Emitter == nil {
		panic("mesh light needs an emissive mesh")
	}

	triangles := mesh.Triangles()
	transform := mesh.Placement.Transform

	corners := make([][3]core.Vec3, len(triangles))
	normals := make([]core.Vec3, len(triangles))
	areas := make([]float64, len(triangles))
	for i, triangle := range triangles {
		a, b, c := triangle.Vertices()
		a, b, c = transform.Point(a), transform.Point(b), transform.Point(c)
		corners[i] = [3]core.Vec3{a, b, c}
		normals[i] = transform.Normal(triangle.Normal())
		areas[i] = 0.5 * b.Subtract(a).Cross(c.Subtract(a)).Length()
	}

	return &MeshLight{
		Mesh:         mesh,
		Epsilon:      epsilon,
		corners:      corners,
		normals:      normals,
		distribution: core.NewDistribution1D(areas),
	}
}

func (ml *MeshLight) Type() LightType {
	return LightTypeArea
}

// Area returns the total world-space surface area, 0 for degenerate meshes
func (ml *MeshLight) Area() float64 {
	return ml.distribution.Total()
}

// Sample picks a triangle by area and a uniform point on it, then converts
// the area density to a solid-angle density for the shading point
func (ml *MeshLight) Sample(point, normal core.Vec3, sampler core.Sampler) LightSample {
	if ml.Area() == 0 {
		return LightSample{Wi: normal, Emitter: ml.Emitter}
	}
	index, _ := ml.distribution.Sample(sampler.Get1D())
	a, b, c := ml.corners[index][0], ml.corners[index][1], ml.corners[index][2]

	e := sampler.Get2D()
	s := math.Sqrt(e.X)
	q := b.Multiply(1 - e.Y).Add(c.Multiply(e.Y)).Multiply(s).Add(a.Multiply(1 - s))

	toLight := q.Subtract(point)
	rSquared := toLight.LengthSquared()
	if rSquared == 0 {
		return LightSample{Wi: normal, Emitter: ml.Emitter}
	}
	wi := toLight.Normalize()

	cosTheta := math.Max(0.001, ml.normals[index].Dot(wi.Negate()))
	pdf := rSquared / (ml.Area() * cosTheta)

	return LightSample{
		Wi:         wi,
		Distance:   q.Subtract(wi.Multiply(ml.Epsilon)).Subtract(point).Length(),
		Irradiance: ml.Emitter.Radiance.Divide(pdf),
		Emitter:    ml.Emitter,
	}
}
