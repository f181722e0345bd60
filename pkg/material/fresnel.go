package material

import "math"

// FresnelDielectric returns the reflected fraction of unpolarized light
// passing from index n1 to n2, 1 on total internal reflection
func FresnelDielectric(cosTheta, n1, n2 float64) float64 {
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	sinPhi := (n1 / n2) * sinTheta
	if sinPhi >= 1 {
		return 1
	}
	cosPhi := math.Sqrt(math.Max(0, 1-sinPhi*sinPhi))

	rs := (n2*cosTheta - n1*cosPhi) / (n2*cosTheta + n1*cosPhi)
	rp := (n1*cosTheta - n2*cosPhi) / (n1*cosTheta + n2*cosPhi)
	return (rs*rs + rp*rp) / 2
}

// FresnelConductor returns the reflected fraction for a conductor with
// complex refractive index n + ik
func FresnelConductor(cosTheta, n, k float64) float64 {
	nk := n*n + k*k
	cos2 := cosTheta * cosTheta

	rs := (nk - 2*n*cosTheta + cos2) / (nk + 2*n*cosTheta + cos2)
	rp := (nk*cos2 - 2*n*cosTheta + 1) / (nk*cos2 + 2*n*cosTheta + 1)
	return (rs + rp) / 2
}
