package scene

import (
	"fmt"
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// RenderMode selects the integrator a camera is rendered with
type RenderMode int

const (
	RenderRayTracing RenderMode = iota
	RenderPathTracing
)

// ParseRenderMode accepts the renderer names used in scene files
func ParseRenderMode(s string) (RenderMode, error) {
	switch s {
	case "", "RayTracing", "DirectLighting":
		return RenderRayTracing, nil
	case "PathTracing":
		return RenderPathTracing, nil
	}
	return RenderRayTracing, fmt.Errorf("unknown renderer %q", s)
}

func (m RenderMode) String() string {
	if m == RenderPathTracing {
		return "path tracing"
	}
	return "ray tracing"
}

// RendererParams are the path tracer switches
type RendererParams struct {
	NextEventEstimation bool
	RussianRoulette     bool
	ImportanceSampling  bool
}

// TonemapOperator selects how HDR pixels are mapped to 8 bits
type TonemapOperator int

const (
	TonemapNone TonemapOperator = iota
	TonemapPhotographic
)

// ParseTonemapOperator maps a TMO name. Only "Photographic" selects the
// photographic operator; anything else clamps.
func ParseTonemapOperator(s string) TonemapOperator {
	if s == "Photographic" {
		return TonemapPhotographic
	}
	return TonemapNone
}

func (op TonemapOperator) String() string {
	if op == TonemapPhotographic {
		return "Photographic"
	}
	return "none"
}

// Tonemap holds the global photographic operator settings of a camera
type Tonemap struct {
	Operator   TonemapOperator
	Key        float64 // middle grey the log-average luminance maps to
	Burn       float64 // percentage of the brightest pixels that saturate
	Saturation float64
	Gamma      float64
}

// Camera is a pinhole or thin-lens camera looking along Gaze. The image
// plane sits Distance in front of Position and spans [Left,Right]x[Bottom,Top]
// in camera coordinates.
type Camera struct {
	Position core.Vec3
	Gaze     core.Vec3
	Up       core.Vec3

	Left, Right, Bottom, Top float64
	Distance                 float64

	Width, Height int
	ImageName     string
	Samples       int

	FocusDistance float64
	ApertureSize  float64
	LeftHanded    bool

	Tonemap *Tonemap // nil when the camera has no tonemap settings
	Mode    RenderMode
	Params  RendererParams

	u, v, w core.Vec3
	q       core.Vec3 // top-left corner of the image plane
}

// NewCamera creates a camera with a near plane given as left, right,
// bottom, top
func NewCamera(position, gaze, up core.Vec3, plane [4]float64, distance float64, width, height int) *Camera {
	c := &Camera{
		Position: position,
		Gaze:     gaze,
		Up:       up,
		Left:     plane[0],
		Right:    plane[1],
		Bottom:   plane[2],
		Top:      plane[3],
		Distance: distance,
		Width:    width,
		Height:   height,
		Samples:  1,
	}
	c.Setup()
	return c
}

// NewLookAtCamera creates a camera aimed at gazePoint with a symmetric
// vertical field of view given in degrees
func NewLookAtCamera(position, gazePoint, up core.Vec3, fovY, distance float64, width, height int) *Camera {
	top := math.Tan(fovY*math.Pi/360) * distance
	right := top * float64(width) / float64(height)
	return NewCamera(position, gazePoint.Subtract(position), up,
		[4]float64{-right, right, -top, top}, distance, width, height)
}

// Setup derives the camera basis. It must run again after the public fields
// change.
func (c *Camera) Setup() {
	c.Gaze = c.Gaze.Normalize()
	c.w = c.Gaze.Negate()
	c.u = c.Up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u).Normalize()
	if c.LeftHanded {
		c.u = c.u.Negate()
	}

	m := c.Position.Subtract(c.w.Multiply(c.Distance))
	c.q = m.Add(c.u.Multiply(c.Left)).Add(c.v.Multiply(c.Top))
}

// Basis returns the right, up and backward camera axes
func (c *Camera) Basis() (u, v, w core.Vec3) {
	return c.u, c.v, c.w
}

// HasDepthOfField reports whether rays start on a lens instead of a pinhole
func (c *Camera) HasDepthOfField() bool {
	return c.ApertureSize > 0
}

// Gamma returns the tonemap gamma, or 0 when the camera has no tonemap
func (c *Camera) Gamma() float64 {
	if c.Tonemap == nil {
		return 0
	}
	return c.Tonemap.Gamma
}

// planePoint returns the image plane point at pixel (i, j) offset by
// (dx, dy) in pixel units. i runs along the width, j down the height.
func (c *Camera) planePoint(i, j int, dx, dy float64) core.Vec3 {
	su := (c.Right - c.Left) * (float64(i) + dx) / float64(c.Width)
	sv := (c.Top - c.Bottom) * (float64(j) + dy) / float64(c.Height)
	return c.q.Add(c.u.Multiply(su)).Subtract(c.v.Multiply(sv))
}

// Ray returns the pinhole ray through pixel (i, j) at the sub-pixel offset
// (dx, dy)
func (c *Camera) Ray(i, j int, dx, dy, time float64) core.Ray {
	s := c.planePoint(i, j, dx, dy)
	ray := core.NewRay(c.Position, s.Subtract(c.Position).Normalize())
	ray.Time = time
	return ray
}

// LensRay returns a ray from the aperture point (lx, ly), both in
// [-0.5, 0.5), through the point the pinhole ray meets the focal plane
func (c *Camera) LensRay(i, j int, dx, dy, lx, ly, time float64) core.Ray {
	pinhole := c.Ray(i, j, dx, dy, time)
	aperture := c.Position.Add(c.u.Multiply(lx).Add(c.v.Multiply(ly)).Multiply(c.ApertureSize))

	tFocus := c.FocusDistance / pinhole.Direction.Dot(c.Gaze)
	focal := pinhole.At(tFocus)

	ray := core.NewRay(aperture, focal.Subtract(aperture).Normalize())
	ray.Time = time
	return ray
}

// GridSize is the side of the jittered sample grid used for n samples
func GridSize(samples int) int {
	if samples <= 1 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(samples))))
}

// PixelRays generates the primary rays of pixel (i, j). A single sample
// goes through the pixel center; more samples are jittered over a square
// grid of sub-pixels. Every ray gets its own time in [0, 1).
func (c *Camera) PixelRays(i, j int, sampler core.Sampler) []core.Ray {
	if c.Samples <= 1 && !c.HasDepthOfField() {
		return []core.Ray{c.Ray(i, j, 0.5, 0.5, sampler.Get1D())}
	}

	k := GridSize(c.Samples)
	rays := make([]core.Ray, 0, k*k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			jitter := sampler.Get2D()
			dx := (float64(a) + jitter.X) / float64(k)
			dy := (float64(b) + jitter.Y) / float64(k)

			if c.HasDepthOfField() {
				lx, ly := core.Centered(sampler), core.Centered(sampler)
				rays = append(rays, c.LensRay(i, j, dx, dy, lx, ly, sampler.Get1D()))
			} else {
				rays = append(rays, c.Ray(i, j, dx, dy, sampler.Get1D()))
			}
		}
	}
	return rays
}
