package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"
)

// ValueSink receives the profiler's labelled readings, e.g. the overlay.
type ValueSink interface {
	SetValue(label, value string)
}

// Stats is one interval's worth of frame and memory statistics.
type Stats struct {
	FPS         float64
	FrameTimeMs float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Publishes stats to the log and an optional ValueSink at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now   func() time.Time
	sink  ValueSink
	quiet bool
	last  Stats
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed it samples memory, publishes the stats and starts a new interval.
//
// Returns:
//   - Stats: the stats of the interval that just ended, or the previous stats
//   - bool: true if a new interval was published this tick
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval || elapsed <= 0 {
		return p.last, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		FrameTimeMs: float64(elapsed.Milliseconds()) / float64(p.frameCount),
		// Alloc is live heap, Sys is the process footprint obtained from the OS.
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.publish(s)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	return s, true
}

// Last returns the most recently published stats.
func (p *Profiler) Last() Stats {
	return p.last
}

func (p *Profiler) publish(s Stats) {
	if !p.quiet {
		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			s.FPS, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs, s.SysMB)
	}
	if p.sink == nil {
		return
	}
	p.sink.SetValue("FPS", fmt.Sprintf("%.0f", s.FPS))
	p.sink.SetValue("Frame", fmt.Sprintf("%.2f ms", s.FrameTimeMs))
	p.sink.SetValue("Heap", fmt.Sprintf("%.2f MB", s.HeapMB))
	p.sink.SetValue("GC", fmt.Sprintf("%d (max %d µs)", s.GCCount, s.MaxPauseUs))
}
