package metrics

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

type recordingSink struct {
	name   string
	events []string
	order  *[]string
}

func (s *recordingSink) Record(event string, _ map[string]any) {
	s.events = append(s.events, event)
	*s.order = append(*s.order, s.name)
}

type panickySink struct{}

func (panickySink) Record(string, map[string]any) {
	panic("listener gone wrong")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBusNotifiesInRegistrationOrder(t *testing.T) {
	var order []string
	a := &recordingSink{name: "a", order: &order}
	b := &recordingSink{name: "b", order: &order}

	bus := NewBus(testLogger())
	bus.Register(a)
	bus.Register(b)

	bus.Record(EventProcessed, nil)
	bus.Record(CacheHit, nil)

	want := []string{"a", "b", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("notifications = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("notifications = %v, want %v", order, want)
		}
	}
}

func TestBusIsolatesPanickingSink(t *testing.T) {
	var order []string
	after := &recordingSink{name: "after", order: &order}

	bus := NewBus(testLogger())
	bus.Register(panickySink{})
	bus.Register(after)

	bus.Record(Error, map[string]any{"step": "test"})

	if len(after.events) != 1 {
		t.Errorf("sink after the panicking one received %d events, want 1", len(after.events))
	}
}

func TestCounters(t *testing.T) {
	c := NewCounters()
	c.Record(EventProcessed, nil)
	c.Record(EventProcessed, nil)
	c.Record(CacheMiss, nil)
	c.Record(ProcessingStart, nil) // timing event, not a counter

	if got := c.Get(EventProcessed); got != 2 {
		t.Errorf("events_processed = %d, want 2", got)
	}
	if got := c.Get(CacheMiss); got != 1 {
		t.Errorf("cache_misses = %d, want 1", got)
	}

	snap := c.Snapshot()
	if snap[EventProcessed] != 2 {
		t.Errorf("snapshot events_processed = %d, want 2", snap[EventProcessed])
	}
	if _, ok := snap[ProcessingStart]; ok {
		t.Error("timing event leaked into counters")
	}
}

func TestLatencyPairsStartEnd(t *testing.T) {
	l := NewLatency()
	current := time.Unix(0, 0)
	l.now = func() time.Time { return current }

	l.Record(ProcessingStart, map[string]any{"event_id": "1:1"})
	current = current.Add(40 * time.Millisecond)
	l.Record(ProcessingEnd, map[string]any{"event_id": "1:1"})

	l.Record(ProcessingStart, map[string]any{"event_id": "1:2"})
	current = current.Add(20 * time.Millisecond)
	l.Record(ProcessingEnd, map[string]any{"event_id": "1:2"})

	if got := l.SampleCount(); got != 2 {
		t.Fatalf("samples = %d, want 2", got)
	}
	if got := l.Average(); got != 30*time.Millisecond {
		t.Errorf("average = %v, want 30ms", got)
	}
}

func TestLatencyIgnoresUnpairedEvents(t *testing.T) {
	l := NewLatency()

	l.Record(ProcessingEnd, map[string]any{"event_id": "orphan"})
	l.Record(ProcessingStart, map[string]any{})
	l.Record(ProcessingStart, nil)

	if got := l.SampleCount(); got != 0 {
		t.Errorf("samples = %d, want 0", got)
	}
	if got := l.Average(); got != 0 {
		t.Errorf("average = %v, want 0", got)
	}
}

func TestLatencyWindowBounded(t *testing.T) {
	l := NewLatency()
	current := time.Unix(0, 0)
	l.now = func() time.Time { return current }

	for i := 0; i < latencyWindow+100; i++ {
		id := map[string]any{"event_id": string(rune('a' + i%26))}
		l.Record(ProcessingStart, id)
		current = current.Add(time.Millisecond)
		l.Record(ProcessingEnd, id)
	}

	if got := l.SampleCount(); got != latencyWindow {
		t.Errorf("samples = %d, want window size %d", got, latencyWindow)
	}
}
