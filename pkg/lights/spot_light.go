package lights

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// SpotLight is a point light restricted to a cone. Inside half the falloff
// angle it is a plain point light, beyond half the coverage angle it is dark,
// and in between it fades with the fourth power of the normalized cosine.
type SpotLight struct {
	Position  core.Vec3
	Direction core.Vec3 // normalized
	Intensity core.Vec3

	cosCoverageHalf float64
	cosFalloffHalf  float64
}

// NewSpotLight creates a spot light; both angles are full cone angles in degrees
func NewSpotLight(position, direction, intensity core.Vec3, coverageDegrees, falloffDegrees float64) *SpotLight {
	coverage := coverageDegrees * math.Pi / 180.0
	falloff := falloffDegrees * math.Pi / 180.0

	return &SpotLight{
		Position:        position,
		Direction:       direction.Normalize(),
		Intensity:       intensity,
		cosCoverageHalf: math.Cos(coverage / 2),
		cosFalloffHalf:  math.Cos(falloff / 2),
	}
}

func (sl *SpotLight) Type() LightType {
	return LightTypePoint
}

// Sample returns the direction to the light scaled by the cone falloff
func (sl *SpotLight) Sample(point, normal core.Vec3, sampler core.Sampler) LightSample {
	toLight := sl.Position.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{Wi: normal, Distance: 0}
	}
	wi := toLight.Divide(distance)

	attenuation := sl.falloff(sl.Direction.Dot(wi.Negate()))

	return LightSample{
		Wi:         wi,
		Distance:   distance,
		Irradiance: sl.Intensity.Multiply(attenuation / (distance * distance)),
	}
}

// falloff maps the cosine between the spot axis and the light-to-point direction
func (sl *SpotLight) falloff(cosTheta float64) float64 {
	if cosTheta > sl.cosFalloffHalf {
		return 1.0
	}
	if cosTheta < sl.cosCoverageHalf {
		return 0.0
	}

	s := (cosTheta - sl.cosCoverageHalf) / (sl.cosFalloffHalf - sl.cosCoverageHalf)
	return s * s * s * s
}
