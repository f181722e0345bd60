package main

import (
	"os"

	"github.com/misrayazgan/RayTracer/cmd"
	"github.com/misrayazgan/RayTracer/pkg/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytracer"
	app.Usage = "render XML scenes with ray tracing or path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, notice, warning or error",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render every camera of a scene",
			Description: `
Load an XML scene, build its BVH and render the image of each camera with
the renderer the camera selects. Images are tonemapped and written as PNG
files named after the camera's ImageName.`,
			ArgsUsage: "scene.xml",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "builtin, b",
					Usage: "render a built-in scene (cornell) instead of a scene file",
				},
				cli.StringFlag{
					Name:  "out-dir, o",
					Usage: "directory for the rendered images (default: the scene directory)",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "number of parallel row bands (default: number of CPUs)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "sampler seed for reproducible renders (default: clock)",
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:      "list",
			Usage:     "list the scene files of a directory",
			ArgsUsage: "[dir]",
			Action:    cmd.ListScenes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("raytracer").Errorf("%v", err)
		os.Exit(1)
	}
}
