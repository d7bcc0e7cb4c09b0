// Package metrics decouples pipeline instrumentation from business
// logic: the pipeline records named events on a Bus and registered sinks
// turn them into counters, latency samples and Prometheus series.
package metrics

import "log/slog"

// Event names recorded by the pipeline.
const (
	EventProcessed   = "event_processed"
	ShopFound        = "shop_found"
	MessageGenerated = "message_generated"
	CacheHit         = "cache_hit"
	CacheMiss        = "cache_miss"
	CacheEviction    = "cache_eviction"
	VisitSimulated   = "visit_simulated"
	Error            = "error"
	ProcessingStart  = "processing_start"
	ProcessingEnd    = "processing_end"
)

// Sink receives every recorded event. Implementations must not retain
// the fields map.
type Sink interface {
	Record(event string, fields map[string]any)
}

// Bus fans an event out to all registered sinks synchronously, in
// registration order. A panicking sink is isolated per call so it can
// never abort the pipeline or starve the other sinks.
type Bus struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Register adds a sink. Sinks are registered at startup, before any
// Record call; the bus itself is not safe for concurrent registration.
func (b *Bus) Register(s Sink) {
	b.sinks = append(b.sinks, s)
}

func (b *Bus) Record(event string, fields map[string]any) {
	for _, s := range b.sinks {
		b.record(s, event, fields)
	}
}

func (b *Bus) record(s Sink, event string, fields map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("metrics sink panicked", "event", event, "panic", r)
		}
	}()
	s.Record(event, fields)
}
