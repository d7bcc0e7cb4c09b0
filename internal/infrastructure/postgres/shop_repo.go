package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/shop"
)

// ShopRepository resolves positions against the PostGIS shops table.
type ShopRepository struct {
	pool *pgxpool.Pool
}

func NewShopRepository(pool *pgxpool.Pool) *ShopRepository {
	return &ShopRepository{pool: pool}
}

// Nearest returns the closest shop to (lat, lon) with its geodesic
// distance in meters, or shop.ErrNoShops when the table is empty.
func (r *ShopRepository) Nearest(ctx context.Context, lat, lon float64) (shop.Match, error) {
	const sql = `
		SELECT
		  shop_id,
		  shop_name,
		  category,
		  ST_Distance(
		    geom::geography,
		    ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
		  ) AS distance
		FROM shops
		ORDER BY distance
		LIMIT 1
	`

	var m shop.Match
	err := r.pool.QueryRow(ctx, sql, lon, lat).Scan(
		&m.ShopID, &m.Name, &m.Category, &m.DistanceMeters,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shop.Match{}, shop.ErrNoShops
		}
		return shop.Match{}, fmt.Errorf("nearest shop query: %w", err)
	}

	return m, nil
}
