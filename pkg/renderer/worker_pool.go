package renderer

import (
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// BandTask asks a worker to render the rows [MinRow, MaxRow) of the frame
type BandTask struct {
	TaskID int
	MinRow int
	MaxRow int
}

// BandResult reports a finished band
type BandResult struct {
	TaskID int
	Stats  BandStats
}

// BandFunc renders the rows of a band with the worker's own sampler
type BandFunc func(task BandTask, sampler core.Sampler)

// WorkerPool renders row bands in parallel. Bands never overlap, so workers
// write straight into the shared frame.
type WorkerPool struct {
	taskQueue   chan BandTask
	resultQueue chan BandResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker owns a sampler and renders the bands it takes from the queue
type Worker struct {
	ID          int
	sampler     core.Sampler
	render      BandFunc
	taskQueue   chan BandTask
	resultQueue chan BandResult
}

// NewWorkerPool creates numWorkers workers, each seeded with seed plus its
// ID. numTasks bounds the queues so submitting never blocks.
func NewWorkerPool(numWorkers, numTasks int, seed int64, render BandFunc) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan BandTask, numTasks),
		resultQueue: make(chan BandResult, numTasks),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			sampler:     core.NewRandomSampler(rand.New(rand.NewSource(seed + int64(i)))),
			render:      render,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop closes the task queue and waits for every worker to drain it
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask queues a band
func (wp *WorkerPool) SubmitTask(task BandTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed band, false once the pool is stopped and drained
func (wp *WorkerPool) GetResult() (BandResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		start := time.Now()
		w.render(task, w.sampler)

		w.resultQueue <- BandResult{
			TaskID: task.TaskID,
			Stats: BandStats{
				Worker:  w.ID,
				MinRow:  task.MinRow,
				MaxRow:  task.MaxRow,
				Elapsed: time.Since(start),
			},
		}
	}
}

// SplitRows divides height rows into at most n contiguous bands whose sizes
// differ by at most one row
func SplitRows(height, n int) []BandTask {
	if n > height {
		n = height
	}
	if n <= 0 {
		return nil
	}

	bands := make([]BandTask, 0, n)
	for i := 0; i < n; i++ {
		bands = append(bands, BandTask{
			TaskID: i,
			MinRow: i * height / n,
			MaxRow: (i + 1) * height / n,
		})
	}
	return bands
}
