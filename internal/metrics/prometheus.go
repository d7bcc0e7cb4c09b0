package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_events_processed_total",
		Help: "The total number of position events fully processed.",
	})
	shopsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_shops_found_total",
		Help: "The total number of events for which a nearest shop was resolved.",
	})
	messagesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_messages_generated_total",
		Help: "The total number of notifications generated by the message service.",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_cache_hits_total",
		Help: "The total number of notification cache hits.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_cache_misses_total",
		Help: "The total number of notification cache misses.",
	})
	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_cache_evictions_total",
		Help: "The total number of cache entries dropped for capacity.",
	})
	visitsSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_visits_simulated_total",
		Help: "The total number of simulated shop visits recorded.",
	})
	pipelineErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nearyou_errors_total",
		Help: "The total number of degraded pipeline steps (store, generator, sink).",
	})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nearyou_processing_duration_seconds",
		Help:    "End-to-end time to process one position event.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)

// Prometheus exports bus events as Prometheus series. Start/end events
// are paired by event id to feed the processing-duration histogram.
type Prometheus struct {
	mu      sync.Mutex
	started map[string]time.Time
}

func NewPrometheus() *Prometheus {
	return &Prometheus{started: make(map[string]time.Time)}
}

func (p *Prometheus) Record(event string, fields map[string]any) {
	switch event {
	case EventProcessed:
		eventsProcessed.Inc()
	case ShopFound:
		shopsFound.Inc()
	case MessageGenerated:
		messagesGenerated.Inc()
	case CacheHit:
		cacheHits.Inc()
	case CacheMiss:
		cacheMisses.Inc()
	case CacheEviction:
		cacheEvictions.Inc()
	case VisitSimulated:
		visitsSimulated.Inc()
	case Error:
		pipelineErrors.Inc()
	case ProcessingStart:
		if id, _ := fields["event_id"].(string); id != "" {
			p.mu.Lock()
			p.started[id] = time.Now()
			p.mu.Unlock()
		}
	case ProcessingEnd:
		id, _ := fields["event_id"].(string)
		if id == "" {
			return
		}
		p.mu.Lock()
		start, ok := p.started[id]
		if ok {
			delete(p.started, id)
		}
		p.mu.Unlock()
		if ok {
			processingDuration.Observe(time.Since(start).Seconds())
		}
	}
}
