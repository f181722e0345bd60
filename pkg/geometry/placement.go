package geometry

import (
	"github.com/misrayazgan/RayTracer/pkg/core"
)

// Placement positions an object in the world: an affine transform plus an
// optional constant motion vector. At ray time t the object sits at
// Translation(Motion * t) applied after Transform.
type Placement struct {
	Transform   core.Transform
	Motion      core.Vec3
	transformed bool
}

// NewPlacement creates a placement from a transform and a motion vector
func NewPlacement(transform core.Transform, motion core.Vec3) Placement {
	return Placement{
		Transform:   transform,
		Motion:      motion,
		transformed: !transform.IsIdentity(),
	}
}

// Identity returns a placement that leaves objects where they are
func Identity() Placement {
	return Placement{Transform: core.IdentityTransform()}
}

// IsIdentity reports whether rays and hits pass through unchanged
func (p Placement) IsIdentity() bool {
	return !p.transformed && p.Motion.IsZero()
}

// HasMotion reports whether the object moves over the shutter interval
func (p Placement) HasMotion() bool {
	return !p.Motion.IsZero()
}

// at returns the full local-to-world transform at the given ray time
func (p Placement) at(time float64) core.Transform {
	if !p.HasMotion() {
		return p.Transform
	}
	return p.Transform.Then(core.Translation(p.Motion.Multiply(time)))
}

// ToLocal maps a world ray into object space. The direction is not
// renormalized, so distances along the ray keep their world meaning.
func (p Placement) ToLocal(ray core.Ray) core.Ray {
	if p.IsIdentity() {
		return ray
	}
	transform := p.at(ray.Time)
	local := ray
	local.Origin = transform.InversePoint(ray.Origin)
	local.Direction = transform.InverseVector(ray.Direction)
	return local
}

// ToWorld maps an object-space hit back to world space
func (p Placement) ToWorld(hit core.Hit, time float64) core.Hit {
	if p.IsIdentity() {
		return hit
	}
	transform := p.at(time)
	hit.Point = transform.Point(hit.Point)
	hit.Normal = transform.Normal(hit.Normal)
	return hit
}

// Bounds turns a local box into the world box, swept along the motion vector
func (p Placement) Bounds(local core.AABB) core.AABB {
	box := local
	if p.transformed {
		box = box.ApplyTransformation(p.Transform)
	}
	if p.HasMotion() {
		box = box.Merge(box.Translate(p.Motion))
	}
	return box
}
