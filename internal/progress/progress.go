package progress

import (
	"context"
	"math"
	"time"
)

// Event is one observed progress notification.
type Event struct {
	// Percent is completion rounded to 4 significant digits.
	Percent float64
	Bytes   int64
	Total   int64
}

// Sampler suppresses repeated progress observations, emitting only when the
// rounded percentage changes from the previous report.
type Sampler struct {
	last    float64
	emitted bool
}

// Observe reports whether the given byte counts represent a new percentage
// bucket and, if so, the rounded percentage to publish.
func (s *Sampler) Observe(bytes, total int64) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	pct := RoundSignificant(float64(bytes)/float64(total)*100, 4)
	if s.emitted && pct == s.last {
		return pct, false
	}
	s.last = pct
	s.emitted = true
	return pct, true
}

// RoundSignificant rounds x to the given number of significant digits.
func RoundSignificant(x float64, digits int) float64 {
	if x == 0 {
		return 0
	}
	magnitude := math.Ceil(math.Log10(math.Abs(x)))
	power := float64(digits) - magnitude
	scale := math.Pow(10, power)
	return math.Round(x*scale) / scale
}

// Poller samples a byte counter on a fixed interval.
type Poller struct {
	Interval time.Duration
	Total    int64
	// Size reports the current byte count of the partially written file.
	// Errors are swallowed; the next tick tries again.
	Size func() (int64, error)
}

// Run polls until ctx is cancelled, invoking emit for each sampled change.
// The final size is not guaranteed to be observed; callers treat the poller
// as advisory only.
func (p *Poller) Run(ctx context.Context, emit func(Event)) {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var sampler Sampler
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bytes, err := p.Size()
			if err != nil {
				continue
			}
			if pct, changed := sampler.Observe(bytes, p.Total); changed && emit != nil {
				emit(Event{Percent: pct, Bytes: bytes, Total: p.Total})
			}
		}
	}
}
