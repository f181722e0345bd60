package core

import (
	"math"
	"testing"
)

func TestSampleHemisphere_StaysAboveSurface(t *testing.T) {
	sampler := NewSeededSampler(42)
	normal := NewVec3(0.2, 0.9, -0.1).Normalize()

	for _, cosineWeighted := range []bool{false, true} {
		for i := 0; i < 1000; i++ {
			direction, cosTheta := SampleHemisphere(normal, sampler.Get2D(), cosineWeighted)
			if math.Abs(direction.Length()-1) > 1e-9 {
				t.Fatalf("direction %v is not unit length", direction)
			}
			if cosTheta < 0 || math.Abs(direction.Dot(normal)-cosTheta) > 1e-9 {
				t.Fatalf("cosTheta %f does not match direction %v", cosTheta, direction)
			}
		}
	}
}

func TestSampleHemisphere_MeanCosine(t *testing.T) {
	// E[cos] is 1/2 for uniform sampling and 2/3 for cosine-weighted sampling
	sampler := NewSeededSampler(1)
	normal := NewVec3(0, 0, 1)
	const samples = 200000

	tests := []struct {
		name           string
		cosineWeighted bool
		expected       float64
	}{
		{"uniform", false, 0.5},
		{"cosine weighted", true, 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := 0.0
			for i := 0; i < samples; i++ {
				_, cosTheta := SampleHemisphere(normal, sampler.Get2D(), tt.cosineWeighted)
				sum += cosTheta
			}
			mean := sum / samples
			if math.Abs(mean-tt.expected) > 0.01 {
				t.Errorf("Expected mean cosine %f, got %f", tt.expected, mean)
			}
		})
	}
}

func TestSampleCone_WithinAngle(t *testing.T) {
	sampler := NewSeededSampler(5)
	axis := NewVec3(1, -1, 0).Normalize()
	cosMax := math.Cos(0.3)

	for i := 0; i < 1000; i++ {
		direction := SampleCone(axis, cosMax, sampler.Get2D())
		if direction.Normalize().Dot(axis) < cosMax-1e-9 {
			t.Fatalf("direction %v outside the cone", direction)
		}
	}
}

func TestSampleInHemisphereRejection(t *testing.T) {
	sampler := NewSeededSampler(9)
	normal := NewVec3(0, -1, 0)

	for i := 0; i < 500; i++ {
		l := SampleInHemisphereRejection(normal, sampler)
		if l.Dot(normal) <= 0 || math.Abs(l.Length()-1) > 1e-9 {
			t.Fatalf("bad sample %v", l)
		}
	}
}
