package material

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// CheckerboardTexture alternates two colors over 3D cells of size 1/Scale
type CheckerboardTexture struct {
	Black  core.Vec3
	White  core.Vec3
	Scale  float64
	Offset float64
	Mode   core.DecalMode
}

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(black, white core.Vec3, scale, offset float64, mode core.DecalMode) *CheckerboardTexture {
	return &CheckerboardTexture{Black: black, White: white, Scale: scale, Offset: offset, Mode: mode}
}

func (c *CheckerboardTexture) Decal() core.DecalMode {
	return c.Mode
}

// Color picks the cell color from the parity of the truncated coordinates
func (c *CheckerboardTexture) Color(uv core.Vec2, p core.Vec3) core.Vec3 {
	x := int((p.X+c.Offset)*c.Scale) % 2
	y := int((p.Y+c.Offset)*c.Scale) % 2
	z := int((p.Z+c.Offset)*c.Scale) % 2

	if (x+y+z)%2 != 0 {
		return c.Black
	}
	return c.White
}

func (c *CheckerboardTexture) PerturbNormal(uv core.Vec2, point core.Vec3, frame core.Frame) core.Vec3 {
	return frame.N
}

// NoiseConversion maps raw noise in [-1,1] to a color value
type NoiseConversion int

const (
	NoiseAbsVal NoiseConversion = iota
	NoiseLinear
)

// ParseNoiseConversion maps the scene-file noise conversion name
func ParseNoiseConversion(s string) (NoiseConversion, error) {
	switch s {
	case "", "absval":
		return NoiseAbsVal, nil
	case "linear":
		return NoiseLinear, nil
	}
	return NoiseAbsVal, fmt.Errorf("unknown noise conversion %q", s)
}

var perlinGradients = [16]core.Vec3{
	{X: 1, Y: 1, Z: 0}, {X: -1, Y: 1, Z: 0}, {X: 1, Y: -1, Z: 0}, {X: -1, Y: -1, Z: 0},
	{X: 1, Y: 0, Z: 1}, {X: -1, Y: 0, Z: 1}, {X: 1, Y: 0, Z: -1}, {X: -1, Y: 0, Z: -1},
	{X: 0, Y: 1, Z: 1}, {X: 0, Y: -1, Z: 1}, {X: 0, Y: 1, Z: -1}, {X: 0, Y: -1, Z: -1},
	{X: 1, Y: 1, Z: 0}, {X: -1, Y: 1, Z: 0}, {X: 0, Y: -1, Z: 1}, {X: 0, Y: -1, Z: -1},
}

// PerlinNoise is gradient noise over the integer lattice
type PerlinNoise struct {
	permutation [16]int
}

// NewPerlinNoise shuffles the lattice permutation with random
func NewPerlinNoise(random *rand.Rand) *PerlinNoise {
	n := &PerlinNoise{}
	for i := range n.permutation {
		n.permutation[i] = i
	}
	random.Shuffle(len(n.permutation), func(i, j int) {
		n.permutation[i], n.permutation[j] = n.permutation[j], n.permutation[i]
	})
	return n
}

// At returns the noise value at p, in [-1,1]
func (n *PerlinNoise) At(p core.Vec3) float64 {
	x := int(math.Floor(p.X))
	y := int(math.Floor(p.Y))
	z := int(math.Floor(p.Z))

	noise := 0.0
	for corner := 0; corner < 8; corner++ {
		i := x + (corner>>2)&1
		j := y + (corner>>1)&1
		k := z + corner&1

		v := p.Subtract(core.NewVec3(float64(i), float64(j), float64(k)))
		noise += n.gradient(i, j, k).Dot(v) * weight(v.X) * weight(v.Y) * weight(v.Z)
	}
	return noise
}

func (n *PerlinNoise) phi(i int) int {
	i %= 16
	if i < 0 {
		i += 16
	}
	return n.permutation[i]
}

func (n *PerlinNoise) gradient(i, j, k int) core.Vec3 {
	return perlinGradients[n.phi(i+n.phi(j+n.phi(k)))]
}

// weight is the quintic falloff from a lattice point
func weight(x float64) float64 {
	x = math.Abs(x)
	x3 := x * x * x
	return -6*x3*x*x + 15*x3*x - 10*x3 + 1
}

// PerlinTexture turns Perlin noise into a gray color or a bump map
type PerlinTexture struct {
	Noise      *PerlinNoise
	Conversion NoiseConversion
	Scale      float64
	BumpFactor float64
	Mode       core.DecalMode
}

// NewPerlinTexture creates a Perlin texture with its own lattice permutation
func NewPerlinTexture(random *rand.Rand, conversion NoiseConversion, scale, bumpFactor float64, mode core.DecalMode) *PerlinTexture {
	return &PerlinTexture{
		Noise:      NewPerlinNoise(random),
		Conversion: conversion,
		Scale:      scale,
		BumpFactor: bumpFactor,
		Mode:       mode,
	}
}

func (pt *PerlinTexture) Decal() core.DecalMode {
	return pt.Mode
}

// Value returns the converted noise at p
func (pt *PerlinTexture) Value(p core.Vec3) float64 {
	noise := pt.Noise.At(p.Multiply(pt.Scale))
	switch pt.Conversion {
	case NoiseAbsVal:
		return math.Abs(noise)
	case NoiseLinear:
		return (noise + 1) / 2
	}
	return noise
}

func (pt *PerlinTexture) Color(uv core.Vec2, p core.Vec3) core.Vec3 {
	v := pt.Value(p)
	return core.NewVec3(v, v, v)
}

// PerturbNormal tilts the normal against the tangential part of the noise gradient
func (pt *PerlinTexture) PerturbNormal(uv core.Vec2, p core.Vec3, frame core.Frame) core.Vec3 {
	if pt.Mode != core.DecalBumpNormal {
		return frame.N
	}

	const epsilon = 0.001
	noise := pt.Value(p)
	g := core.NewVec3(
		(pt.Value(core.NewVec3(p.X+epsilon, p.Y, p.Z))-noise)/epsilon,
		(pt.Value(core.NewVec3(p.X, p.Y+epsilon, p.Z))-noise)/epsilon,
		(pt.Value(core.NewVec3(p.X, p.Y, p.Z+epsilon))-noise)/epsilon,
	).Multiply(pt.BumpFactor)

	n := frame.N
	tangential := g.Subtract(n.Multiply(g.Dot(n)))
	return n.Subtract(tangential).Normalize()
}
