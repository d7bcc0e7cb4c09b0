package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/event"
)

// EventRepository is the sink writer for enriched events.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Insert(ctx context.Context, e event.Enriched) error {
	const sql = `
		INSERT INTO user_events
		  (event_id, event_time, user_id, latitude, longitude,
		   poi_range, poi_name, poi_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, sql,
		e.EventID, e.EventTime, e.UserID, e.Latitude, e.Longitude,
		e.DistanceMeters, e.ShopName, e.NotificationText,
	)
	if err != nil {
		return fmt.Errorf("insert user event: %w", err)
	}

	return nil
}
