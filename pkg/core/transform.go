package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is an affine 4x4 transformation together with its inverse and the
// inverse transpose used for normals.
type Transform struct {
	Matrix       mgl64.Mat4
	Inverse      mgl64.Mat4
	NormalMatrix mgl64.Mat4
}

// IdentityTransform returns the transform that leaves everything in place
func IdentityTransform() Transform {
	return NewTransform(mgl64.Ident4())
}

// NewTransform derives the inverse and normal matrices of m
func NewTransform(m mgl64.Mat4) Transform {
	inverse := m.Inv()
	return Transform{
		Matrix:       m,
		Inverse:      inverse,
		NormalMatrix: inverse.Transpose(),
	}
}

// Translation creates a translation transform
func Translation(offset Vec3) Transform {
	return NewTransform(mgl64.Translate3D(offset.X, offset.Y, offset.Z))
}

// Scaling creates a scale transform
func Scaling(factors Vec3) Transform {
	return NewTransform(mgl64.Scale3D(factors.X, factors.Y, factors.Z))
}

// Rotation creates a rotation of angleDegrees around axis
func Rotation(angleDegrees float64, axis Vec3) Transform {
	axis = axis.Normalize()
	m := mgl64.HomogRotate3D(mgl64.DegToRad(angleDegrees), mgl64.Vec3{axis.X, axis.Y, axis.Z})
	return NewTransform(m)
}

// Then returns the transform that applies t first and next afterwards
func (t Transform) Then(next Transform) Transform {
	return NewTransform(next.Matrix.Mul4(t.Matrix))
}

// Inverted swaps the roles of the matrix and its inverse
func (t Transform) Inverted() Transform {
	return Transform{
		Matrix:       t.Inverse,
		Inverse:      t.Matrix,
		NormalMatrix: t.Matrix.Transpose(),
	}
}

// IsIdentity reports whether the matrix is the identity within float tolerance
func (t Transform) IsIdentity() bool {
	return t.Matrix.ApproxEqual(mgl64.Ident4())
}

// Point transforms a position (w = 1)
func (t Transform) Point(p Vec3) Vec3 {
	return mulPoint(t.Matrix, p)
}

// Vector transforms a direction (w = 0) without renormalizing it
func (t Transform) Vector(v Vec3) Vec3 {
	return mulVector(t.Matrix, v)
}

// Normal transforms a surface normal with the inverse transpose and normalizes it
func (t Transform) Normal(n Vec3) Vec3 {
	return mulVector(t.NormalMatrix, n).Normalize()
}

// InversePoint maps a world position back into the local frame
func (t Transform) InversePoint(p Vec3) Vec3 {
	return mulPoint(t.Inverse, p)
}

// InverseVector maps a world direction back into the local frame
func (t Transform) InverseVector(v Vec3) Vec3 {
	return mulVector(t.Inverse, v)
}

func mulPoint(m mgl64.Mat4, p Vec3) Vec3 {
	r := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if r[3] != 0 && r[3] != 1 {
		return NewVec3(r[0]/r[3], r[1]/r[3], r[2]/r[3])
	}
	return NewVec3(r[0], r[1], r[2])
}

func mulVector(m mgl64.Mat4, v Vec3) Vec3 {
	r := m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0})
	return NewVec3(r[0], r[1], r[2])
}
