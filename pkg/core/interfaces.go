package core

import "math"

// Object is anything a ray can be intersected with: primitives, meshes,
// instances and BVH nodes.
type Object interface {
	// Intersect returns the nearest hit with positive t, if any.
	Intersect(ray Ray) (Hit, bool)
	BoundingBox() AABB
}

// Emission marks geometry that is also a light source. Its pointer identity
// is what shadow rays compare against to ignore the light being sampled.
type Emission struct {
	Radiance Vec3
}

// Hit describes a ray/object intersection in world space
type Hit struct {
	T          float64
	Point      Vec3
	Normal     Vec3
	MaterialID int
	Texture    Texture // shading texture, shared; nil when untextured
	UV         Vec2
	Emitter    *Emission
}

// NoHit returns a hit record at the nearest-so-far starting distance
func NoHit() Hit {
	return Hit{T: math.Inf(1), MaterialID: -1}
}

// IsLight reports whether the hit primitive emits light
func (h Hit) IsLight() bool {
	return h.Emitter != nil
}

// DecalMode selects how a texture takes part in shading
type DecalMode int

const (
	DecalReplaceKd DecalMode = iota
	DecalBlendKd
	DecalReplaceNormal
	DecalReplaceBackground
	DecalReplaceAll
	DecalBumpNormal
)

// Frame is a tangent frame at a surface point. T and B follow the texture
// parameterization and are not necessarily unit length.
type Frame struct {
	T, B, N Vec3
}

// ToWorld maps tangent-space coordinates through the frame columns
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.T.Multiply(v.X).Add(f.B.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}

// Texture is sampled at hit time. Color returns the texture color for the
// given texture coordinates and point; PerturbNormal is only called for the
// normal-map and bump-map decal modes.
type Texture interface {
	Decal() DecalMode
	Color(uv Vec2, point Vec3) Vec3
	PerturbNormal(uv Vec2, point Vec3, frame Frame) Vec3
}
