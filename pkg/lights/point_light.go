package lights

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// PointLight emits intensity uniformly from a single position
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3
}

// NewPointLight creates a new point light
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// Sample returns the direction to the light with inverse-square falloff
func (pl *PointLight) Sample(point, normal core.Vec3, sampler core.Sampler) LightSample {
	toLight := pl.Position.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{Wi: normal, Distance: 0}
	}

	return LightSample{
		Wi:         toLight.Divide(distance),
		Distance:   distance,
		Irradiance: pl.Intensity.Divide(distance * distance),
	}
}

// DirectionalLight is a light at infinity shining along Direction
type DirectionalLight struct {
	Direction core.Vec3
	Radiance  core.Vec3
}

// NewDirectionalLight creates a new directional light
func NewDirectionalLight(direction, radiance core.Vec3) *DirectionalLight {
	return &DirectionalLight{Direction: direction.Normalize(), Radiance: radiance}
}

func (dl *DirectionalLight) Type() LightType {
	return LightTypeInfinite
}

// Sample returns the reversed light direction at infinite distance
func (dl *DirectionalLight) Sample(point, normal core.Vec3, sampler core.Sampler) LightSample {
	return LightSample{
		Wi:         dl.Direction.Negate(),
		Distance:   math.Inf(1),
		Irradiance: dl.Radiance,
	}
}
