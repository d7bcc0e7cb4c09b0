package position

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is one reported GPS fix, as produced on the gps_stream topic.
// The Kafka message key is string(user_id), which is what keeps all
// events of one user on one partition.
type Event struct {
	UserID    int       `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	// Offset is the Kafka offset of the originating message and doubles
	// as the event id in the analytics sink.
	Offset int64 `json:"-"`
}

type wireEvent struct {
	UserID    *int    `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

// Parse decodes a raw Kafka message value into an Event.
func Parse(value []byte, offset int64) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(value, &w); err != nil {
		return Event{}, fmt.Errorf("decode position event: %w", err)
	}
	if w.UserID == nil {
		return Event{}, fmt.Errorf("position event has no user_id")
	}
	if w.Latitude < -90 || w.Latitude > 90 || w.Longitude < -180 || w.Longitude > 180 {
		return Event{}, fmt.Errorf("position event out of range: lat=%f lon=%f", w.Latitude, w.Longitude)
	}

	ts, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		// Simulators emit timezone-less ISO-8601 fixes; read them as UTC.
		ts, err = time.Parse("2006-01-02T15:04:05", w.Timestamp)
		if err != nil {
			return Event{}, fmt.Errorf("parse timestamp %q: %w", w.Timestamp, err)
		}
	}

	return Event{
		UserID:    *w.UserID,
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Timestamp: ts.UTC(),
		Offset:    offset,
	}, nil
}

// Key returns the partitioning key for the event.
func (e Event) Key() string {
	return fmt.Sprintf("%d", e.UserID)
}
