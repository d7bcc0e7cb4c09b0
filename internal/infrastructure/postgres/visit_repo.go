package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/visit"
)

// VisitRepository persists simulated visits to the analytics store.
type VisitRepository struct {
	pool *pgxpool.Pool
}

func NewVisitRepository(pool *pgxpool.Pool) *VisitRepository {
	return &VisitRepository{pool: pool}
}

func (r *VisitRepository) Insert(ctx context.Context, v visit.Visit) error {
	const sql = `
		INSERT INTO user_visits (
			visit_id, user_id, shop_id, offer_id,
			visit_start_time, visit_end_time, duration_minutes,
			offer_accepted, estimated_spending, user_satisfaction,
			day_of_week, hour_of_day,
			user_age, user_profession, user_interests,
			shop_name, shop_category, created_at
		)
		VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12,
			$13, $14, $15,
			$16, $17, $18
		)
	`

	_, err := r.pool.Exec(ctx, sql,
		v.VisitID, v.UserID, v.ShopID, v.OfferID,
		v.StartTime, v.EndTime, v.DurationMinutes,
		v.OfferAccepted, v.EstimatedSpending, v.Satisfaction,
		v.DayOfWeek, v.HourOfDay,
		v.UserAge, v.UserProfession, v.UserInterests,
		v.ShopName, v.ShopCategory, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert simulated visit: %w", err)
	}

	return nil
}
