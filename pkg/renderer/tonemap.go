package renderer

import (
	"image"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

// luminanceFloor keeps the log average finite on black pixels
const luminanceFloor = 1e-5

// ToneMap converts a linear frame to 8-bit pixels. Without a tonemap, or
// with the "none" operator, each channel is truncated and clamped to 0..255.
func ToneMap(frame *Frame, tonemap *scene.Tonemap) *image.NRGBA {
	values := frame.Pixels
	if tonemap != nil && tonemap.Operator == scene.TonemapPhotographic {
		values = Photographic(frame.Pixels, *tonemap)
	}

	img := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := values[y*frame.Width+x]
			img.SetNRGBA(x, y, color.NRGBA{
				R: clampChannel(c.X),
				G: clampChannel(c.Y),
				B: clampChannel(c.Z),
				A: 255,
			})
		}
	}
	return img
}

// Photographic applies the global Reinhard operator: luminances are scaled
// by key over their log average, compressed with a white point chosen so
// that burn percent of the pixels saturate, then recombined with the
// original chroma and gamma corrected into 0..255.
func Photographic(pixels []core.Vec3, tm scene.Tonemap) []core.Vec3 {
	n := len(pixels)
	out := make([]core.Vec3, n)
	if n == 0 {
		return out
	}

	world := make([]float64, n)
	for i, p := range pixels {
		world[i] = worldLuminance(p)
	}
	average := logAverage(world)

	scaled := make([]float64, n)
	for i, lw := range world {
		scaled[i] = tm.Key * lw / average
	}

	white := whitePoint(scaled, tm.Burn)
	white2 := white * white

	for i, p := range pixels {
		lw := world[i]
		if lw <= 0 || white2 == 0 {
			continue
		}
		l := scaled[i]
		ld := l * (1 + l/white2) / (1 + l)

		out[i] = core.NewVec3(
			displayChannel(ld, p.X/lw, tm),
			displayChannel(ld, p.Y/lw, tm),
			displayChannel(ld, p.Z/lw, tm),
		)
	}
	return out
}

// logAverage is the geometric mean luminance over every pixel. Pixels whose
// log is undefined add nothing to the sum but still count.
func logAverage(world []float64) float64 {
	logs := make([]float64, len(world))
	for i, lw := range world {
		if l := math.Log(luminanceFloor + lw); !math.IsNaN(l) {
			logs[i] = l
		}
	}
	return math.Exp(floats.Sum(logs) / float64(len(world)))
}

// whitePoint is the scaled luminance below which (100 - burn) percent of
// the pixels fall
func whitePoint(scaled []float64, burn float64) float64 {
	sorted := append([]float64(nil), scaled...)
	sort.Float64s(sorted)

	p := (100 - burn) / 100
	if p <= 0 {
		return sorted[0]
	}
	if p > 1 {
		p = 1
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// worldLuminance uses the Rec. 709 weights of linear sRGB
func worldLuminance(c core.Vec3) float64 {
	return 0.2126*c.X + 0.7152*c.Y + 0.0722*c.Z
}

func displayChannel(ld, ratio float64, tm scene.Tonemap) float64 {
	if ratio < 0 {
		ratio = 0
	}
	c := ld * math.Pow(ratio, tm.Saturation)
	if tm.Gamma > 0 {
		c = math.Pow(c, 1/tm.Gamma)
	}
	return c * 255
}

func clampChannel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
