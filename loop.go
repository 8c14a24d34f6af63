package deferred

import (
	"time"
)

// IterationStats is reported by FixedFrequencyLoop about once per second.
type IterationStats struct {
	MeasuredHz float64
	Iterations uint64
	Elapsed    time.Duration
}

// LoopStats is the app resource holding the latest IterationStats.
type LoopStats IterationStats

// FixedFrequencyLoop calls tick at a target rate, sleeping away the rest of
// each period. A tick that overruns its period is not compensated.
type FixedFrequencyLoop struct {
	Hz          float64
	StatsPeriod time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

func NewFixedFrequencyLoop(hz float64) *FixedFrequencyLoop {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &FixedFrequencyLoop{
		Hz:          hz,
		StatsPeriod: time.Second,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Start blocks until terminate returns true. terminate is checked before
// every tick; dt is the wall time since the previous tick in seconds.
func (l *FixedFrequencyLoop) Start(tick func(dt float64), terminate func() bool, onStats func(IterationStats)) {
	period := time.Duration(float64(time.Second) / l.Hz)

	var total uint64
	var windowIterations uint64
	last := l.now()
	windowStart := last

	for !terminate() {
		start := l.now()
		tick(start.Sub(last).Seconds())
		last = start
		total++
		windowIterations++

		end := l.now()
		if window := end.Sub(windowStart); window >= l.StatsPeriod && onStats != nil {
			onStats(IterationStats{
				MeasuredHz: float64(windowIterations) / window.Seconds(),
				Iterations: total,
				Elapsed:    window,
			})
			windowStart = end
			windowIterations = 0
		}

		if remaining := period - end.Sub(start); remaining > 0 {
			l.sleep(remaining)
		}
	}
}
