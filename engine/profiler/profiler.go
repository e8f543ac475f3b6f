package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// DefaultInterval is the stats logging interval used when none is configured.
const DefaultInterval = time.Second

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Frame counting happens on the render thread. Memory sampling is submitted to a worker pool
// and never touches render state.
type Profiler struct {
	logger         *zap.Logger
	pool           worker.DynamicWorkerPool
	now            func() time.Time
	updateInterval time.Duration

	frameCount int
	lastTime   time.Time
	lastFPS    float64
	taskID     int
	released   bool

	// memMu guards the sampling state shared by overlapping memory tasks.
	memMu          *sync.Mutex
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastSample     time.Time
}

// NewProfiler creates a new Profiler with a single-worker pool for memory sampling.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         zap.NewNop(),
		now:            time.Now,
		updateInterval: DefaultInterval,
		memMu:          &sync.Mutex{},
	}
	for _, opt := range options {
		opt(p)
	}
	p.pool = worker.NewDynamicWorkerPool(1, 16, time.Second)
	p.lastTime = p.now()
	p.lastSample = p.lastTime
	return p
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed it logs the frame rate and submits a memory sample.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	p.lastFPS = float64(p.frameCount) / elapsed.Seconds()
	p.logger.Info("frame stats",
		zap.Float64("fps", p.lastFPS),
		zap.Int("frames", p.frameCount),
		zap.Duration("elapsed", elapsed),
	)

	if !p.released {
		p.taskID++
		p.pool.SubmitTask(worker.Task{
			ID: p.taskID,
			Do: func() (any, error) {
				p.sampleMemory(currentTime)
				return nil, nil
			},
		})
	}

	p.frameCount = 0
	p.lastTime = currentTime
	return true
}

// Release stops the memory sampling pool. Later ticks still count frames and log frame stats
// but submit no memory samples. Safe to call more than once.
func (p *Profiler) Release() {
	if p.released {
		return
	}
	p.released = true
	p.pool.Stop()
	p.logger.Debug("profiler released")
}

// FPS returns the frame rate computed at the last logging tick.
//
// Returns:
//   - float64: frames per second, 0 before the first interval elapses
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}

// sampleMemory reads runtime memory stats and logs heap, allocation rate, and GC pauses since
// the previous sample.
func (p *Profiler) sampleMemory(at time.Time) {
	p.memMu.Lock()
	defer p.memMu.Unlock()

	runtime.ReadMemStats(&p.memStats)
	elapsed := at.Sub(p.lastSample).Seconds()
	if elapsed <= 0 {
		elapsed = p.updateInterval.Seconds()
	}

	// Alloc: live heap. TotalAlloc: cumulative, tracks churn. Sys: process footprint.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Info("memory stats",
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc_count", gcCount),
		zap.Uint64("gc_last_pause_us", lastPauseUs),
		zap.Uint64("gc_max_pause_us", maxPauseUs),
		zap.Float64("sys_mb", sysMB),
	)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastSample = at
}
