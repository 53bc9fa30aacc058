package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Restaurants the user picked for a search, with enrichment details
func (r *Repository) GetReferenceRestaurants(ctx context.Context, searchID int64) ([]domain.RestaurantRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name, r.address, '',
		        COALESCE(d.cuisine, ''), d.price_level,
		        COALESCE(d.description, ''), COALESCE(d.review_summary, ''),
		        COALESCE(d.menu_highlights, ''), COALESCE(d.tags, '')
		FROM restaurants r
		LEFT JOIN restaurant_details d ON d.restaurant_id = r.id
		WHERE r.search_id = $1
		ORDER BY r.id`, searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query reference restaurants for search %d: %w", searchID, err)
	}
	return scanRestaurants(rows)
}

// Restaurants found in the target city for a search
func (r *Repository) GetCityRestaurants(ctx context.Context, searchID int64) ([]domain.RestaurantRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.address, COALESCE(c.tomtom_poi_id, ''),
		        COALESCE(d.cuisine, ''), d.price_level,
		        COALESCE(d.description, ''), COALESCE(d.review_summary, ''),
		        COALESCE(d.menu_highlights, ''), COALESCE(d.tags, '')
		FROM city_restaurants c
		LEFT JOIN restaurant_details d ON d.city_restaurant_id = c.id
		WHERE c.search_id = $1
		ORDER BY c.id`, searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("query city restaurants for search %d: %w", searchID, err)
	}
	return scanRestaurants(rows)
}

// Count reference and city restaurants for a search
func (r *Repository) CountRestaurants(ctx context.Context, searchID int64) (reference, city int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM restaurants WHERE search_id = $1),
		        (SELECT COUNT(*) FROM city_restaurants WHERE search_id = $1)`,
		searchID,
	).Scan(&reference, &city)

	if err != nil {
		return 0, 0, fmt.Errorf("count restaurants for search %d: %w", searchID, err)
	}
	return reference, city, nil
}

func scanRestaurants(rows pgx.Rows) ([]domain.RestaurantRecord, error) {
	defer rows.Close()

	var items []domain.RestaurantRecord
	for rows.Next() {
		var rec domain.RestaurantRecord
		err := rows.Scan(&rec.ID, &rec.Name, &rec.Address, &rec.POIID,
			&rec.Cuisine, &rec.PriceLevel,
			&rec.Description, &rec.ReviewSummary,
			&rec.MenuJSON, &rec.TagsJSON)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over restaurants: %w", err)
	}
	return items, nil
}
