package pipeline

import (
	"sync"

	"github.com/segmentio/kafka-go"
)

// offsetTracker decides when fetched Kafka offsets may be committed.
// Messages of one Kafka partition fan out to different workers (routing
// is by user hash, and a partition can carry many users), so they finish
// out of order; committing offset N acknowledges everything up to N.
// The tracker therefore only releases the prefix of completed messages
// in fetch order, per partition.
//
// Fetched is called from the fetch loop, Completed from workers.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[int]*partitionQueue
}

type inflight struct {
	msg  kafka.Message
	done bool
}

type partitionQueue struct {
	queue []inflight // fetch order
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[int]*partitionQueue)}
}

// Fetched registers a message. Must happen before the message is handed
// to a worker.
func (t *offsetTracker) Fetched(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pq, ok := t.partitions[msg.Partition]
	if !ok {
		pq = &partitionQueue{}
		t.partitions[msg.Partition] = pq
	}
	pq.queue = append(pq.queue, inflight{msg: msg})
}

// Completed marks a message done. When that releases a prefix of the
// partition's fetch queue, the last message of the prefix is returned
// for committing; committing it acknowledges the whole prefix.
func (t *offsetTracker) Completed(msg kafka.Message) (kafka.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pq, ok := t.partitions[msg.Partition]
	if !ok {
		return kafka.Message{}, false
	}

	for i := range pq.queue {
		if pq.queue[i].msg.Offset == msg.Offset {
			pq.queue[i].done = true
			break
		}
	}

	var head kafka.Message
	released := false
	for len(pq.queue) > 0 && pq.queue[0].done {
		head = pq.queue[0].msg
		released = true
		pq.queue = pq.queue[1:]
	}
	return head, released
}

// InFlight reports how many fetched messages await completion.
func (t *offsetTracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, pq := range t.partitions {
		n += len(pq.queue)
	}
	return n
}
