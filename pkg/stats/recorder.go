// Package stats records lookup timings and exposes them as summaries, CSV
// files and prometheus metrics.
package stats

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// ErrNoSamples is returned when a summary is requested before any lookup was
// recorded.
var ErrNoSamples = errors.New("no lookup times recorded yet")

// Summary describes a set of recorded lookup durations in nanoseconds.
type Summary struct {
	Count  int
	MinNs  int64
	MaxNs  int64
	AvgNs  float64
	StdNs  float64 // population standard deviation
	Misses int
}

// Recorder times lookups and keeps every duration.
type Recorder struct {
	clock   clock.Clock
	samples []int64
	misses  int
}

func NewRecorder(clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.New()
	}
	return &Recorder{clock: clk}
}

// Time runs lookup, records how long it took and returns its result together
// with the duration.
func (r *Recorder) Time(lookup func() int) (int, time.Duration) {
	start := r.clock.Now()
	nextHop := lookup()
	elapsed := r.clock.Since(start)

	r.Record(elapsed, nextHop < 0)
	return nextHop, elapsed
}

// Record adds a single sample.
func (r *Recorder) Record(d time.Duration, miss bool) {
	r.samples = append(r.samples, d.Nanoseconds())
	if miss {
		r.misses++
	}
}

// Samples returns the recorded durations in nanoseconds, in recording order.
func (r *Recorder) Samples() []int64 {
	return r.samples
}

func (r *Recorder) Len() int {
	return len(r.samples)
}

// Reset drops all samples.
func (r *Recorder) Reset() {
	r.samples = nil
	r.misses = 0
}

func (r *Recorder) Summary() (Summary, error) {
	if len(r.samples) == 0 {
		return Summary{}, ErrNoSamples
	}

	s := Summary{Count: len(r.samples), MinNs: r.samples[0], MaxNs: r.samples[0], Misses: r.misses}

	var sum int64
	for _, v := range r.samples {
		sum += v
		s.MinNs = min(s.MinNs, v)
		s.MaxNs = max(s.MaxNs, v)
	}
	s.AvgNs = float64(sum) / float64(s.Count)

	var variance float64
	for _, v := range r.samples {
		diff := float64(v) - s.AvgNs
		variance += diff * diff
	}
	s.StdNs = math.Sqrt(variance / float64(s.Count))

	return s, nil
}
