package cmd

import (
	"errors"
	"path/filepath"

	"github.com/misrayazgan/RayTracer/pkg/loaders"
	"github.com/misrayazgan/RayTracer/pkg/renderer"
	"github.com/misrayazgan/RayTracer/pkg/scene"
	"github.com/urfave/cli"
)

// RenderScene renders every camera of a scene file, or of a built-in scene,
// to a PNG named after the camera's image name. Image names ending in .exr
// also get the untonemapped OpenEXR image.
func RenderScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, sceneDir, err := loadScene(ctx)
	if err != nil {
		return err
	}

	outDir := ctx.String("out-dir")
	if outDir == "" {
		outDir = sceneDir
	}

	r := renderer.New(sc, renderer.Options{
		Workers: ctx.Int("workers"),
		Seed:    ctx.Int64("seed"),
	})

	for _, camera := range sc.Cameras {
		frame, stats := r.Render(camera)

		if hdrFile, ok := renderer.HDROutputPath(outDir, camera.ImageName); ok {
			if err := renderer.SaveEXR(hdrFile, frame); err != nil {
				return err
			}
			logger.Noticef("wrote %s", hdrFile)
		}

		imgFile := renderer.OutputPath(outDir, camera.ImageName)
		if err := renderer.SavePNG(imgFile, frame, camera.Tonemap); err != nil {
			return err
		}

		logger.Noticef("wrote %s", imgFile)
		logger.Infof("%s", stats.Summary())
		logger.Noticef("frame statistics\n%s", stats.Table())
	}

	return nil
}

// loadScene returns the scene named by --builtin or the scene file argument,
// and the directory its images default to
func loadScene(ctx *cli.Context) (*scene.Scene, string, error) {
	if name := ctx.String("builtin"); name != "" {
		sc, err := scene.Builtin(name)
		return sc, ".", err
	}

	if ctx.NArg() != 1 {
		return nil, "", errors.New("missing scene file argument")
	}
	scenePath := ctx.Args().First()

	sc, err := loaders.LoadScene(scenePath)
	if err != nil {
		return nil, "", err
	}
	return sc, filepath.Dir(scenePath), nil
}
