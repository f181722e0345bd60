package core

import "math"

// Miss is the slab test result for a ray that does not reach the box
var Miss = math.Inf(1)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that any Merge replaces
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return EmptyAABB()
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		min.X = math.Min(min.X, point.X)
		min.Y = math.Min(min.Y, point.Y)
		min.Z = math.Min(min.Z, point.Z)

		max.X = math.Max(max.X, point.X)
		max.Y = math.Max(max.Y, point.Y)
		max.Z = math.Max(max.Z, point.Z)
	}

	return AABB{Min: min, Max: max}
}

// Intersect runs the slab test and returns the parametric distance at which
// the ray reaches the box, or Miss.
// When the origin lies inside the box the exit distance is returned.
func (aabb AABB) Intersect(ray Ray) float64 {
	tEntry := math.Inf(-1)
	tExit := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		// A zero component yields ±Inf here, which the comparisons below handle.
		invDirection := 1.0 / ray.Direction.Axis(axis)
		origin := ray.Origin.Axis(axis)

		t1 := (aabb.Min.Axis(axis) - origin) * invDirection
		t2 := (aabb.Max.Axis(axis) - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		// Comparisons rather than math.Max/Min so a NaN slab (origin on the
		// plane of a parallel axis) leaves the interval untouched.
		if t1 > tEntry {
			tEntry = t1
		}
		if t2 < tExit {
			tExit = t2
		}

		if tEntry > tExit {
			return Miss
		}
	}

	if tEntry < 0 {
		return tExit
	}
	return tEntry
}

// Hit reports whether the ray reaches the box ahead of (or at) its origin
func (aabb AABB) Hit(ray Ray) bool {
	t := aabb.Intersect(ray)
	return t != Miss && t >= 0
}

// Merge returns an AABB that bounds both this AABB and another
func (aabb AABB) Merge(other AABB) AABB {
	min := Vec3{
		X: math.Min(aabb.Min.X, other.Min.X),
		Y: math.Min(aabb.Min.Y, other.Min.Y),
		Z: math.Min(aabb.Min.Z, other.Min.Z),
	}
	max := Vec3{
		X: math.Max(aabb.Max.X, other.Max.X),
		Y: math.Max(aabb.Max.Y, other.Max.Y),
		Z: math.Max(aabb.Max.Z, other.Max.Z),
	}
	return AABB{Min: min, Max: max}
}

// ApplyTransformation transforms all eight corners and refits the box around them
func (aabb AABB) ApplyTransformation(transform Transform) AABB {
	corners := make([]Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		corner := aabb.Min
		if i&1 != 0 {
			corner.X = aabb.Max.X
		}
		if i&2 != 0 {
			corner.Y = aabb.Max.Y
		}
		if i&4 != 0 {
			corner.Z = aabb.Max.Z
		}
		corners = append(corners, transform.Point(corner))
	}
	return NewAABBFromPoints(corners...)
}

// Translate returns the box shifted by offset
func (aabb AABB) Translate(offset Vec3) AABB {
	return AABB{Min: aabb.Min.Add(offset), Max: aabb.Max.Add(offset)}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Diagonal returns the extent of the AABB along each axis
func (aabb AABB) Diagonal() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}
