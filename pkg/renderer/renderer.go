package renderer

import (
	"math"
	"runtime"
	"time"

	"github.com/misrayazgan/RayTracer/pkg/core"
	"github.com/misrayazgan/RayTracer/pkg/integrator"
	"github.com/misrayazgan/RayTracer/pkg/log"
	"github.com/misrayazgan/RayTracer/pkg/scene"
)

var logger = log.New("renderer")

// Options configures a render
type Options struct {
	Workers int   // Parallel row bands, runtime.NumCPU() when zero
	Seed    int64 // Base seed of the per-worker samplers, the clock when zero
}

// Frame is a linear HDR image, row major with row 0 at the top
type Frame struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pixels: make([]core.Vec3, width*height)}
}

// At returns the color of pixel (x, y)
func (f *Frame) At(x, y int) core.Vec3 {
	return f.Pixels[y*f.Width+x]
}

// Set stores the color of pixel (x, y)
func (f *Frame) Set(x, y int, color core.Vec3) {
	f.Pixels[y*f.Width+x] = color
}

// Renderer draws the scene as seen from its cameras
type Renderer struct {
	scene   *scene.Scene
	options Options
}

// New creates a renderer for a built scene
func New(s *scene.Scene, options Options) *Renderer {
	if options.Seed == 0 {
		options.Seed = time.Now().UnixNano()
	}
	return &Renderer{scene: s, options: options}
}

// Render traces every pixel of the camera's image and returns the linear
// frame. A NaN color component is stored as zero.
func (r *Renderer) Render(camera *scene.Camera) (*Frame, RenderStats) {
	start := time.Now()
	frame := NewFrame(camera.Width, camera.Height)
	pixelIntegrator := integrator.New(r.scene, camera)

	bands := SplitRows(camera.Height, r.workerCount(camera.Height))
	pool := NewWorkerPool(len(bands), len(bands), r.options.Seed, func(task BandTask, sampler core.Sampler) {
		renderBand(r.scene, camera, pixelIntegrator, frame, task, sampler)
	})

	stats := RenderStats{
		ImageName:    camera.ImageName,
		Width:        camera.Width,
		Height:       camera.Height,
		RaysPerPixel: raysPerPixel(camera),
		Mode:         camera.Mode.String(),
		Workers:      pool.GetNumWorkers(),
		Primitives:   r.scene.PrimitiveCount(),
	}
	if r.scene.BVH != nil {
		bvhStats := r.scene.BVH.Stats()
		stats.BVHNodes = bvhStats.Nodes
		stats.BVHMaxDepth = bvhStats.MaxDepth
	}

	logger.Infof("rendering %s: %dx%d with %d workers", camera.ImageName, camera.Width, camera.Height, stats.Workers)

	pool.Start()
	for _, band := range bands {
		pool.SubmitTask(band)
	}
	pool.Stop()

	for result, ok := pool.GetResult(); ok; result, ok = pool.GetResult() {
		logger.Debugf("rows %d-%d done by worker %d in %v", result.Stats.MinRow, result.Stats.MaxRow-1, result.Stats.Worker, result.Stats.Elapsed)
		stats.Bands = append(stats.Bands, result.Stats)
	}

	stats.Elapsed = time.Since(start)
	return frame, stats
}

func (r *Renderer) workerCount(height int) int {
	workers := r.options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > height {
		workers = height
	}
	return workers
}

// renderBand averages the camera's rays for every pixel of the band's rows
func renderBand(s *scene.Scene, camera *scene.Camera, pixelIntegrator integrator.Integrator, frame *Frame, task BandTask, sampler core.Sampler) {
	for j := task.MinRow; j < task.MaxRow; j++ {
		for i := 0; i < camera.Width; i++ {
			rays := camera.PixelRays(i, j, sampler)

			var color core.Vec3
			for _, ray := range rays {
				color = color.Add(pixelIntegrator.RayColor(ray, s.MaxRecursionDepth, integrator.Pixel{X: i, Y: j}, sampler))
			}
			color = color.Divide(float64(len(rays)))

			frame.Set(i, j, dropNaN(color))
		}
	}
}

func dropNaN(c core.Vec3) core.Vec3 {
	if math.IsNaN(c.X) {
		c.X = 0
	}
	if math.IsNaN(c.Y) {
		c.Y = 0
	}
	if math.IsNaN(c.Z) {
		c.Z = 0
	}
	return c
}

func raysPerPixel(camera *scene.Camera) int {
	if camera.Samples <= 1 && !camera.HasDepthOfField() {
		return 1
	}
	n := scene.GridSize(camera.Samples)
	return n * n
}
