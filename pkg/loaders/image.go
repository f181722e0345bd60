package loaders

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/material"
)

// ImageData contains a decoded image. LDR channels are in [0, 255], HDR
// channels hold linear values.
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, row 0 at the top
	Format string
}

// exrSignature starts every OpenEXR file
var exrSignature = []byte{0x76, 0x2f, 0x31, 0x01}

// LoadImage decodes a PNG, JPEG, BMP, TIFF or OpenEXR file. LDR channels keep
// their 8-bit scale; 16-bit images are scaled down to it.
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	if magic, _ := r.Peek(len(exrSignature)); bytes.Equal(magic, exrSignature) {
		data, err := DecodeEXR(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
		}
		logger.Debugf("loaded exr image %s (%dx%d)", filename, data.Width, data.Height)
		return data, nil
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA is 16-bit, 257 maps 0xffff back to 255
			pixels[y*width+x] = core.NewVec3(
				float64(r)/257.0,
				float64(g)/257.0,
				float64(b)/257.0,
			)
		}
	}

	logger.Debugf("loaded %s image %s (%dx%d)", format, filename, width, height)

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
		Format: format,
	}, nil
}

// IsHDR reports whether the pixels are linear values rather than 8-bit levels
func (d *ImageData) IsHDR() bool {
	return d.Format == "exr"
}

// Texture wraps the image in a nearest-filtered replace_kd texture. HDR
// images are not normalized.
func (d *ImageData) Texture() *material.ImageTexture {
	texture := material.NewImageTexture(d.Width, d.Height, d.Pixels)
	if d.IsHDR() {
		texture.Normalizer = 1
	}
	return texture
}
