package lights

import "github.com/misrayazgan/RayTracer/pkg/core"

type LightType string

const (
	LightTypePoint    LightType = "point"
	LightTypeArea     LightType = "area"
	LightTypeInfinite LightType = "infinite"
)

// Light is a source that can be sampled for direct lighting
type Light interface {
	Type() LightType

	// Sample picks one incoming direction toward the light for a shading point.
	// All random choices happen inside this call; the returned sample carries
	// everything the caller needs, so lights keep no per-call state.
	Sample(point core.Vec3, normal core.Vec3, sampler core.Sampler) LightSample
}

// LightSample describes one sampled connection from a shading point to a light
type LightSample struct {
	Wi         core.Vec3      // unit direction from the shading point to the light
	Distance   float64        // distance along Wi, +Inf for lights at infinity
	Irradiance core.Vec3      // incoming light before the BRDF and cosine terms
	Emitter    *core.Emission // emissive geometry behind this light, nil for analytic lights
}

// IsBlack reports whether the sample carries no light
func (s LightSample) IsBlack() bool {
	return s.Irradiance.IsZero()
}
