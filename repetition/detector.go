// Package repetition detects an agent that keeps producing the same output.
package repetition

type (
	Detector struct {
		threshold        int
		overlapThreshold float64
		history          []string
	}

	Option func(*Detector)
)

func WithThreshold(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.threshold = n
		}
	}
}

func WithOverlapThreshold(v float64) Option {
	return func(d *Detector) {
		if v > 0 {
			d.overlapThreshold = v
		}
	}
}

func New(opts ...Option) *Detector {
	d := &Detector{
		threshold:        DefaultThreshold,
		overlapThreshold: DefaultOverlapThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RecordAndCheck appends output to the sliding window and reports whether
// the last threshold outputs are all similar to each other.
func (d *Detector) RecordAndCheck(output string) bool {
	d.history = append(d.history, output)
	if len(d.history) > d.threshold+1 {
		d.history = d.history[len(d.history)-(d.threshold+1):]
	}

	if len(d.history) < d.threshold {
		return false
	}

	recent := d.history[len(d.history)-d.threshold:]
	for _, out := range recent[1:] {
		if !Similar(recent[0], out, d.overlapThreshold) {
			return false
		}
	}
	return true
}

// Reset forgets every recorded output.
func (d *Detector) Reset() {
	d.history = d.history[:0]
}

func (d *Detector) Len() int {
	return len(d.history)
}
