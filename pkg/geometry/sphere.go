package geometry

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// Sphere represents a sphere shape in its local frame
type Sphere struct {
	Surface
	Placement
	Center core.Vec3
	Radius float64

	bbox core.AABB
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, surface Surface, placement Placement) *Sphere {
	r := core.NewVec3(radius, radius, radius)
	return &Sphere{
		Surface:   surface,
		Placement: placement,
		Center:    center,
		Radius:    radius,
		bbox:      placement.Bounds(core.NewAABB(center.Subtract(r), center.Add(r))),
	}
}

// Intersect tests if a ray intersects with the sphere
func (s *Sphere) Intersect(ray core.Ray) (core.Hit, bool) {
	local := s.ToLocal(ray)

	oc := local.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := local.Direction.Dot(local.Direction)
	b := 2 * local.Direction.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return core.Hit{}, false
	}

	sqrtD := math.Sqrt(discriminant)
	far := (-b + sqrtD) / (2 * a)
	near := (-b - sqrtD) / (2 * a)

	// A negative near root means the origin is inside the sphere
	t := near
	if near < 0 {
		t = far
	}
	if t < 0 {
		return core.Hit{}, false
	}

	point := local.At(t)
	offset := point.Subtract(s.Center)
	normal := offset.Normalize()

	hit := core.Hit{
		T:          t,
		Point:      point,
		Normal:     normal,
		MaterialID: s.MaterialID,
		Texture:    s.Texture,
		Emitter:    s.Emitter,
	}

	if s.Texture != nil || s.NormalTexture != nil {
		hit.UV = s.texCoords(offset)
	}

	if s.NormalTexture != nil {
		switch s.NormalTexture.Decal() {
		case core.DecalReplaceNormal, core.DecalBumpNormal:
			// Perturbation works on the center-relative point
			hit.Normal = s.NormalTexture.PerturbNormal(hit.UV, offset, s.tangentFrame(offset, normal))
		}
	}

	return s.ToWorld(hit, ray.Time), true
}

// texCoords maps a center-relative point to spherical (u, v)
func (s *Sphere) texCoords(p core.Vec3) core.Vec2 {
	theta := math.Acos(clampUnit(p.Y / s.Radius))
	phi := math.Atan2(p.Z, p.X)
	return core.NewVec2((math.Pi-phi)/(2*math.Pi), theta/math.Pi)
}

// tangentFrame returns the partial derivatives of the (u, v) parameterization
func (s *Sphere) tangentFrame(p, normal core.Vec3) core.Frame {
	theta := math.Acos(clampUnit(p.Y / s.Radius))
	phi := math.Atan2(p.Z, p.X)

	tangent := core.NewVec3(2*math.Pi*p.Z, 0, -2*math.Pi*p.X)
	bitangent := core.NewVec3(
		p.Y*math.Cos(phi)*math.Pi,
		-s.Radius*math.Sin(theta)*math.Pi,
		p.Y*math.Sin(phi)*math.Pi,
	)

	if s.NormalTexture.Decal() == core.DecalReplaceNormal {
		tangent = tangent.Normalize()
		bitangent = bitangent.Normalize()
	}

	return core.Frame{T: tangent, B: bitangent, N: normal}
}

// BoundingBox returns the world-space box, padded for motion
func (s *Sphere) BoundingBox() core.AABB {
	return s.bbox
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
