package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; every render worker owns one.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// Centered returns a random offset in [-0.5, 0.5)
func Centered(sampler Sampler) float64 {
	return sampler.Get1D() - 0.5
}

// SampleHemisphere returns a direction around normal together with its cosine.
// Uniform sampling uses theta = acos(e), cosine-weighted sampling uses
// theta = asin(sqrt(e)).
func SampleHemisphere(normal Vec3, sample Vec2, cosineWeighted bool) (Vec3, float64) {
	phi := 2.0 * math.Pi * sample.X

	var theta float64
	if cosineWeighted {
		theta = math.Asin(math.Sqrt(sample.Y))
	} else {
		theta = math.Acos(sample.Y)
	}

	u, v := OrthonormalBasis(normal)
	sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)

	direction := normal.Multiply(cosTheta).
		Add(v.Multiply(sinTheta * math.Cos(phi))).
		Add(u.Multiply(sinTheta * math.Sin(phi)))

	return direction, cosTheta
}

// SampleCone samples a direction uniformly within a cone around direction
func SampleCone(direction Vec3, cosTotalWidth float64, sample Vec2) Vec3 {
	u, v := OrthonormalBasis(direction)

	// Sample direction within the cone
	cosTheta := 1.0 - sample.X + sample.X*cosTotalWidth
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * sample.Y

	// Convert to Cartesian coordinates in local space
	x := sinTheta * math.Cos(phi)
	y := sinTheta * math.Sin(phi)
	z := cosTheta

	// Transform to world space
	return u.Multiply(x).Add(v.Multiply(y)).Add(direction.Multiply(z))
}

// SampleInHemisphereRejection draws uniform points in [-1,1]^3 until one lies
// inside the unit sphere and above the surface, then normalizes it
func SampleInHemisphereRejection(normal Vec3, sampler Sampler) Vec3 {
	for {
		p := sampler.Get3D().Multiply(2).Subtract(NewVec3(1, 1, 1))
		lengthSquared := p.LengthSquared()
		if lengthSquared > 1 || lengthSquared == 0 {
			continue
		}
		if p.Dot(normal) > 0 {
			return p.Normalize()
		}
	}
}
