package deferred

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClockLoop(hz float64) (*FixedFrequencyLoop, *time.Time) {
	clock := time.Unix(0, 0)
	l := NewFixedFrequencyLoop(hz)
	l.now = func() time.Time { return clock }
	l.sleep = func(d time.Duration) { clock = clock.Add(d) }
	return l, &clock
}

func TestFixedFrequencyLoop_Stats(t *testing.T) {
	l, _ := fakeClockLoop(10)

	ticks := 0
	var dts []float64
	var stats []IterationStats
	l.Start(
		func(dt float64) { ticks++; dts = append(dts, dt) },
		func() bool { return ticks >= 25 },
		func(s IterationStats) { stats = append(stats, s) },
	)

	assert.Equal(t, 25, ticks)
	assert.Equal(t, 0.0, dts[0])
	assert.InDelta(t, 0.1, dts[1], 1e-9)

	require.Len(t, stats, 2)
	assert.InDelta(t, 10.0, stats[1].MeasuredHz, 1e-9)
	assert.Equal(t, uint64(21), stats[1].Iterations)
	assert.Equal(t, time.Second, stats[1].Elapsed)
}

func TestFixedFrequencyLoop_NoSleepWhenOverrun(t *testing.T) {
	l, clock := fakeClockLoop(100)
	slept := 0
	l.sleep = func(time.Duration) { slept++ }

	ticks := 0
	l.Start(
		func(float64) {
			ticks++
			*clock = clock.Add(50 * time.Millisecond)
		},
		func() bool { return ticks >= 3 },
		nil,
	)
	assert.Equal(t, 3, ticks)
	assert.Zero(t, slept)
}

func TestFixedFrequencyLoop_TerminateBeforeFirstTick(t *testing.T) {
	l, _ := fakeClockLoop(60)
	l.Start(func(float64) { t.Fatal("tick called") }, func() bool { return true }, nil)
}

func TestNewFixedFrequencyLoop_DefaultHz(t *testing.T) {
	assert.Equal(t, float64(DefaultHz), NewFixedFrequencyLoop(0).Hz)
}
