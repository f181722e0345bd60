package material

import (
	"fmt"
	"math"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// Interpolation selects how an image texture is filtered
type Interpolation int

const (
	InterpolationNearest Interpolation = iota
	InterpolationBilinear
)

// ParseInterpolation maps the scene-file interpolation name
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "", "nearest":
		return InterpolationNearest, nil
	case "bilinear":
		return InterpolationBilinear, nil
	}
	return InterpolationNearest, fmt.Errorf("unknown interpolation %q", s)
}

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], channels in [0,255]

	Interpolation Interpolation
	Mode          core.DecalMode
	Normalizer    float64 // colors are divided by this except for backgrounds
	BumpFactor    float64
}

// NewImageTexture creates a nearest-filtered kd texture normalized to [0,1]
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:      width,
		Height:     height,
		Pixels:     pixels,
		Mode:       core.DecalReplaceKd,
		Normalizer: 255,
		BumpFactor: 1,
	}
}

func (t *ImageTexture) Decal() core.DecalMode {
	return t.Mode
}

// Color samples the texture at the given UV coordinates. Image rows run top
// to bottom, so v=0 is the first row.
func (t *ImageTexture) Color(uv core.Vec2, point core.Vec3) core.Vec3 {
	i := uv.X * float64(t.Width)
	j := uv.Y * float64(t.Height)

	var color core.Vec3
	if t.Interpolation == InterpolationNearest {
		color = t.fetch(int(i), int(j))
	} else {
		p := math.Floor(i)
		q := math.Floor(j)
		dx := i - p
		dy := j - q
		x, y := int(p), int(q)

		color = t.fetch(x, y).Multiply((1 - dx) * (1 - dy)).
			Add(t.fetch(x+1, y).Multiply(dx * (1 - dy))).
			Add(t.fetch(x, y+1).Multiply((1 - dx) * dy)).
			Add(t.fetch(x+1, y+1).Multiply(dx * dy))
	}

	// Backgrounds stay in [0,255]
	if t.Mode != core.DecalReplaceBackground {
		color = color.Divide(t.Normalizer)
	}
	return color
}

// fetch reads a texel with repeat addressing
func (t *ImageTexture) fetch(i, j int) core.Vec3 {
	i %= t.Width
	j %= t.Height
	if i < 0 {
		i += t.Width
	}
	if j < 0 {
		j += t.Height
	}
	return t.Pixels[j*t.Width+i]
}

// PerturbNormal applies the texture as a normal map or a bump map
func (t *ImageTexture) PerturbNormal(uv core.Vec2, point core.Vec3, frame core.Frame) core.Vec3 {
	switch t.Mode {
	case core.DecalReplaceNormal:
		// Texel in [0,1] shifted to [-0.5,0.5] is the tangent-space normal
		local := t.Color(uv, point).Subtract(core.NewVec3(0.5, 0.5, 0.5)).Normalize()
		return frame.ToWorld(local).Normalize()

	case core.DecalBumpNormal:
		i := int(math.Floor(uv.X * float64(t.Width)))
		j := int(math.Floor(uv.Y * float64(t.Height)))

		height := t.fetch(i, j).Average()
		du := (t.fetch(i+1, j).Average() - height) * t.BumpFactor
		dv := (t.fetch(i, j+1).Average() - height) * t.BumpFactor

		qu := frame.T.Add(frame.N.Multiply(du))
		qv := frame.B.Add(frame.N.Multiply(dv))

		n := qv.Cross(qu).Normalize()
		if n.Dot(frame.N) < 0 {
			n = n.Negate()
		}
		return n
	}
	return frame.N
}
