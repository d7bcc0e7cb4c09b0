package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/profile"
)

// ProfileRepository reads user demographics from the analytics store.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get returns the profile for userID. An absent user surfaces as
// profile.ErrNotFound, distinct from transport errors, so callers can
// skip enrichment without retrying.
func (r *ProfileRepository) Get(ctx context.Context, userID int) (profile.Profile, error) {
	const sql = `
		SELECT user_id, age, profession, interests
		FROM users
		WHERE user_id = $1
	`

	var p profile.Profile
	err := r.pool.QueryRow(ctx, sql, userID).Scan(
		&p.UserID, &p.Age, &p.Profession, &p.Interests,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, fmt.Errorf("get user profile %d: %w", userID, err)
	}

	return p, nil
}
