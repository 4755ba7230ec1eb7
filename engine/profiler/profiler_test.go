package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

type mapSink map[string]string

func (m mapSink) SetValue(label, value string) { m[label] = value }

func TestTickPublishesOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	sink := mapSink{}
	p := NewProfiler(WithClock(clock.now), WithSink(sink), WithQuiet(true))

	for i := 0; i < 49; i++ {
		clock.t = clock.t.Add(20 * time.Millisecond)
		_, published := p.Tick()
		require.False(t, published, "tick %d", i)
	}
	clock.t = clock.t.Add(20 * time.Millisecond)
	stats, published := p.Tick()
	require.True(t, published)

	assert.InDelta(t, 50, stats.FPS, 0.01)
	assert.Equal(t, "50", sink["FPS"])
	assert.Equal(t, "20.00 ms", sink["Frame"])
	assert.Contains(t, sink, "Heap")
	assert.Contains(t, sink, "Frame")
	assert.Contains(t, sink, "GC")
	assert.Equal(t, stats, p.Last())
}

func TestTickStartsNewInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(500*time.Millisecond), WithQuiet(true))

	clock.t = clock.t.Add(time.Second)
	first, ok := p.Tick()
	require.True(t, ok)
	assert.InDelta(t, 1, first.FPS, 0.01)

	clock.t = clock.t.Add(100 * time.Millisecond)
	got, ok := p.Tick()
	assert.False(t, ok)
	assert.Equal(t, first, got)

	clock.t = clock.t.Add(400 * time.Millisecond)
	second, ok := p.Tick()
	require.True(t, ok)
	assert.InDelta(t, 4, second.FPS, 0.01)
}
