package metrics

import (
	"sync"
	"time"
)

const latencyWindow = 1000

// Latency pairs processing_start / processing_end events by their
// "event_id" field and keeps a sliding window of end-to-end durations.
type Latency struct {
	mu      sync.Mutex
	started map[string]time.Time
	samples []time.Duration
	now     func() time.Time
}

func NewLatency() *Latency {
	return &Latency{
		started: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *Latency) Record(event string, fields map[string]any) {
	id, _ := fields["event_id"].(string)
	if id == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch event {
	case ProcessingStart:
		l.started[id] = l.now()
	case ProcessingEnd:
		start, ok := l.started[id]
		if !ok {
			return
		}
		delete(l.started, id)
		l.samples = append(l.samples, l.now().Sub(start))
		if len(l.samples) > latencyWindow {
			l.samples = l.samples[len(l.samples)-latencyWindow:]
		}
	}
}

// Average returns the mean duration over the current window, zero when
// no samples exist yet.
func (l *Latency) Average() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range l.samples {
		total += d
	}
	return total / time.Duration(len(l.samples))
}

// SampleCount returns how many samples the window currently holds.
func (l *Latency) SampleCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.samples)
}
