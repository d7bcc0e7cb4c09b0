package pipeline

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func msg(partition int, offset int64) kafka.Message {
	return kafka.Message{Partition: partition, Offset: offset}
}

func TestOffsetTrackerInOrder(t *testing.T) {
	tr := newOffsetTracker()
	tr.Fetched(msg(0, 1))
	tr.Fetched(msg(0, 2))

	head, ok := tr.Completed(msg(0, 1))
	if !ok || head.Offset != 1 {
		t.Fatalf("Completed(1) = (%d,%v), want (1,true)", head.Offset, ok)
	}
	head, ok = tr.Completed(msg(0, 2))
	if !ok || head.Offset != 2 {
		t.Fatalf("Completed(2) = (%d,%v), want (2,true)", head.Offset, ok)
	}
	if tr.InFlight() != 0 {
		t.Errorf("in flight = %d, want 0", tr.InFlight())
	}
}

func TestOffsetTrackerOutOfOrderHoldsCommit(t *testing.T) {
	tr := newOffsetTracker()
	for off := int64(1); off <= 3; off++ {
		tr.Fetched(msg(0, off))
	}

	// Later offsets finish first; nothing may be committed while the
	// head of the fetch queue is in flight.
	if _, ok := tr.Completed(msg(0, 3)); ok {
		t.Fatal("offset 3 released while 1 and 2 in flight")
	}
	if _, ok := tr.Completed(msg(0, 2)); ok {
		t.Fatal("offset 2 released while 1 in flight")
	}

	// Completing the head releases the whole prefix at once.
	head, ok := tr.Completed(msg(0, 1))
	if !ok || head.Offset != 3 {
		t.Fatalf("Completed(1) = (%d,%v), want (3,true)", head.Offset, ok)
	}
	if tr.InFlight() != 0 {
		t.Errorf("in flight = %d, want 0", tr.InFlight())
	}
}

func TestOffsetTrackerPartitionsIndependent(t *testing.T) {
	tr := newOffsetTracker()
	tr.Fetched(msg(0, 5))
	tr.Fetched(msg(1, 9))

	head, ok := tr.Completed(msg(1, 9))
	if !ok || head.Partition != 1 || head.Offset != 9 {
		t.Fatalf("partition 1 commit blocked by partition 0: (%v, %+v)", ok, head)
	}
	if tr.InFlight() != 1 {
		t.Errorf("in flight = %d, want 1", tr.InFlight())
	}
}

func TestOffsetTrackerToleratesGaps(t *testing.T) {
	// Compacted topics fetch non-contiguous offsets.
	tr := newOffsetTracker()
	tr.Fetched(msg(0, 10))
	tr.Fetched(msg(0, 14))

	if _, ok := tr.Completed(msg(0, 14)); ok {
		t.Fatal("offset 14 released before 10")
	}
	head, ok := tr.Completed(msg(0, 10))
	if !ok || head.Offset != 14 {
		t.Fatalf("Completed(10) = (%d,%v), want (14,true)", head.Offset, ok)
	}
}
