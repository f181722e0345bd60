package material

import (
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// BRDF turns irradiance arriving along wi into radiance leaving along wo.
// Implementations return irradiance * f(wi, wo) * cos(theta_i), or zero when
// wi is below the surface.
type BRDF interface {
	Evaluate(m *Material, normal, wi, wo, irradiance core.Vec3) core.Vec3
}

// Phong is the original Phong model
type Phong struct {
	Exponent float64
}

func (b Phong) Evaluate(m *Material, normal, wi, wo, irradiance core.Vec3) core.Vec3 {
	cosTheta := wi.Dot(normal)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	cosAlpha := math.Max(0, core.Reflect(wi, normal).Normalize().Dot(wo))
	f := m.Diffuse.Add(m.Specular.Multiply(math.Pow(cosAlpha, b.Exponent) / cosTheta))
	return irradiance.MultiplyVec(f).Multiply(cosTheta)
}

// BlinnPhong is the original Blinn-Phong model
type BlinnPhong struct {
	Exponent float64
}

func (b BlinnPhong) Evaluate(m *Material, normal, wi, wo, irradiance core.Vec3) core.Vec3 {
	cosTheta := wi.Dot(normal)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	cosAlpha := math.Max(0, wi.Add(wo).Normalize().Dot(normal))
	f := m.Diffuse.Add(m.Specular.Multiply(math.Pow(cosAlpha, b.Exponent) / cosTheta))
	return irradiance.MultiplyVec(f).Multiply(cosTheta)
}

// ModifiedPhong drops the 1/cos term of Phong; the normalized form conserves energy
type ModifiedPhong struct {
	Exponent   float64
	Normalized bool
}

func (b ModifiedPhong) Evaluate(m *Material, normal, wi, wo, irradiance core.Vec3) core.Vec3 {
	cosTheta := wi.Dot(normal)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	cosAlpha := math.Max(0, core.Reflect(wi, normal).Normalize().Dot(wo))
	lobe := math.Pow(cosAlpha, b.Exponent)

	var f core.Vec3
	if b.Normalized {
		f = m.Diffuse.Divide(math.Pi).Add(m.Specular.Multiply((b.Exponent + 2) / (2 * math.Pi) * lobe))
	} else {
		f = m.Diffuse.Add(m.Specular.Multiply(lobe))
	}
	return irradiance.MultiplyVec(f).Multiply(cosTheta)
}

// ModifiedBlinnPhong drops the 1/cos term of Blinn-Phong
type ModifiedBlinnPhong struct {
	Exponent   float64
	Normalized bool
}

func (b ModifiedBlinnPhong) Evaluate(m *Material, normal, wi, wo, irradiance core.Vec3) core.Vec3 {
	cosTheta := wi.Dot(normal)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	cosAlpha := math.Max(0, wi.Add(wo).Normalize().Dot(normal))
	lobe := math.Pow(cosAlpha, b.Exponent)

	var f core.Vec3
	if b.Normalized {
		f = m.Diffuse.Divide(math.Pi).Add(m.Specular.Multiply((b.Exponent + 8) / (8 * math.Pi) * lobe))
	} else {
		f = m.Diffuse.Add(m.Specular.Multiply(lobe))
	}
	return irradiance.MultiplyVec(f).Multiply(cosTheta)
}

// TorranceSparrow is a microfacet model with a Blinn distribution, the
// Cook-Torrance shadowing term and conductor Fresnel. With KdFresnel the
// diffuse part only gets the energy the specular part did not reflect.
type TorranceSparrow struct {
	Exponent  float64
	KdFresnel bool
}

func (b TorranceSparrow) Evaluate(m *Material, normal, wi, wo, irradiance core.Vec3) core.Vec3 {
	cosTheta := wi.Dot(normal)
	if cosTheta <= 0 {
		return core.Vec3{}
	}

	wh := wi.Add(wo).Normalize()
	cosAlpha := math.Max(0, wh.Dot(normal))
	cosBeta := math.Max(0, wo.Dot(wh))
	cosPhi := math.Max(0, wo.Dot(normal))

	d := (b.Exponent + 2) / (2 * math.Pi) * math.Pow(cosAlpha, b.Exponent)
	g := geometryTerm(normal, wi, wo, wh)
	fr := FresnelConductor(cosBeta, m.RefractionIndex, m.AbsorptionIndex)

	kd := m.Diffuse
	if b.KdFresnel {
		kd = kd.Multiply(1 - fr)
	}

	f := kd.Divide(math.Pi).Add(m.Specular.Multiply(d * fr * g / (4 * cosTheta * (cosPhi + 1e-5))))
	return irradiance.MultiplyVec(f).Multiply(cosTheta)
}

func geometryTerm(n, wi, wo, wh core.Vec3) float64 {
	woh := wo.Dot(wh)
	left := 2 * n.Dot(wh) * n.Dot(wo) / woh
	right := 2 * n.Dot(wh) * n.Dot(wi) / woh
	return math.Min(1, math.Min(left, right))
}
