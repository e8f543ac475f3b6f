package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTickLogsAtInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithLogger(zap.New(core)), WithInterval(time.Second), WithClock(clock.now))

	for i := 0; i < 29; i++ {
		clock.t = clock.t.Add(20 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	assert.Zero(t, p.FPS())

	clock.t = clock.t.Add(420 * time.Millisecond)
	assert.True(t, p.Tick())
	assert.InDelta(t, 30.0, p.FPS(), 1e-9)

	frames := logs.FilterMessage("frame stats").All()
	if assert.Len(t, frames, 1) {
		assert.Equal(t, int64(30), frames[0].ContextMap()["frames"])
	}

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("memory stats").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// the counter restarts after logging
	clock.t = clock.t.Add(10 * time.Millisecond)
	assert.False(t, p.Tick())
}

func TestWithIntervalKeepsDefault(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, DefaultInterval, p.updateInterval)
}

func TestReleaseStopsMemorySampling(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithLogger(zap.New(core)), WithInterval(time.Second), WithClock(clock.now))

	p.Release()
	p.Release()
	assert.Equal(t, 1, logs.FilterMessage("profiler released").Len())

	clock.t = clock.t.Add(time.Second)
	assert.True(t, p.Tick())
	assert.InDelta(t, 1.0, p.FPS(), 1e-9)
	assert.Equal(t, 1, logs.FilterMessage("frame stats").Len())

	assert.Never(t, func() bool {
		return logs.FilterMessage("memory stats").Len() > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}
