package pipeline

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/position"
	"github.com/AlphaCodeSWE/NearYou/internal/metrics"
)

// MessageSource is the slice of the Kafka consumer the runtime uses.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Runtime drives a set of partition workers over one Kafka consumer.
// Messages are routed by FNV hash of the message key (user id), so all
// events of one user land on one worker in ingestion order; each worker
// processes its queue sequentially through its own Pipeline. An offset
// is committed only once every earlier fetch of the same Kafka partition
// has completed, keeping delivery at-least-once.
type Runtime struct {
	source    MessageSource
	pipelines []*Pipeline
	bus       *metrics.Bus
	logger    *slog.Logger
	queueSize int
}

func NewRuntime(source MessageSource, pipelines []*Pipeline, queueSize int, bus *metrics.Bus, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Runtime{
		source:    source,
		pipelines: pipelines,
		bus:       bus,
		logger:    logger,
		queueSize: queueSize,
	}
}

// Run fetches, routes and commits until ctx is cancelled, then drains
// the worker queues before returning.
func (r *Runtime) Run(ctx context.Context) error {
	n := len(r.pipelines)
	queues := make([]chan kafka.Message, n)
	for i := range queues {
		queues[i] = make(chan kafka.Message, r.queueSize)
	}

	tracker := newOffsetTracker()

	// Workers run detached from the fetch context so that cancellation
	// stops fetching but lets already-queued messages finish: every
	// committed offset was fully processed. Each pipeline step carries
	// its own timeout, which bounds the drain.
	work := context.WithoutCancel(ctx)

	var workers sync.WaitGroup
	for i := 0; i < n; i++ {
		workers.Add(1)
		go func(p *Pipeline, queue <-chan kafka.Message) {
			defer workers.Done()
			for msg := range queue {
				r.process(work, p, msg)
				r.commit(tracker, msg)
			}
		}(r.pipelines[i], queues[i])
	}

	for {
		msg, err := r.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("failed to fetch message", "error", err)
			continue
		}

		tracker.Fetched(msg)
		queues[r.route(msg.Key, n)] <- msg
	}

	for _, q := range queues {
		close(q)
	}
	workers.Wait()
	return nil
}

// route picks a worker for a message key.
func (r *Runtime) route(key []byte, n int) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % uint32(n))
}

func (r *Runtime) process(ctx context.Context, p *Pipeline, msg kafka.Message) {
	pos, err := position.Parse(msg.Value, msg.Offset)
	if err != nil {
		// Malformed fixes are counted, committed and skipped.
		r.logger.Error("failed to parse position event", "offset", msg.Offset, "error", err)
		r.bus.Record(metrics.Error, map[string]any{"step": "parse", "error": err.Error()})
		return
	}

	enriched := p.Process(ctx, pos)
	r.logger.Info("processed event",
		"user_id", enriched.UserID,
		"shop", enriched.ShopName,
		"distance", enriched.DistanceMeters,
		"notified", enriched.NotificationText != "",
		"visited", enriched.Visited)
}

// commit acknowledges msg once the tracker releases a prefix of its
// partition. The background context lets a drain after cancellation
// still acknowledge finished work.
func (r *Runtime) commit(tracker *offsetTracker, msg kafka.Message) {
	head, ok := tracker.Completed(msg)
	if !ok {
		return
	}
	if err := r.source.CommitMessages(context.Background(), head); err != nil {
		r.logger.Error("failed to commit kafka message", "offset", head.Offset, "error", err)
	}
}
