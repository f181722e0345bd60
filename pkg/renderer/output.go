package renderer

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/misrayazgan/RayTracer/pkg/loaders"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

// OutputPath places imageName in dir with its extension replaced by .png
func OutputPath(dir, imageName string) string {
	base := filepath.Base(imageName)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
	return filepath.Join(dir, base)
}

// HDROutputPath places an .exr imageName in dir. It reports false for
// image names that ask for an LDR image only.
func HDROutputPath(dir, imageName string) (string, bool) {
	base := filepath.Base(imageName)
	if !strings.EqualFold(filepath.Ext(base), ".exr") {
		return "", false
	}
	return filepath.Join(dir, base), true
}

// SavePNG tonemaps the frame and writes it to path
func SavePNG(path string, frame *Frame, tonemap *scene.Tonemap) error {
	file, err := createOutput(path)
	if err != nil {
		return err
	}

	if err := png.Encode(file, ToneMap(frame, tonemap)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

// SaveEXR writes the linear frame to path as OpenEXR, without tonemapping
func SaveEXR(path string, frame *Frame) error {
	file, err := createOutput(path)
	if err != nil {
		return err
	}

	if err := loaders.EncodeEXR(file, frame.Width, frame.Height, frame.Pixels); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}
