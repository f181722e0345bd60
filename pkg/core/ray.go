package core

// Ray represents a ray with an origin and direction.
// Inside marks travel through a refractive medium, Time in [0,1] selects the
// motion blur instant and Indirect marks bounce rays of the path tracer.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Inside    bool
	Time      float64
	Indirect  bool
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
