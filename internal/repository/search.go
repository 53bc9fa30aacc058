package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/restaurant-recommender/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Get single search
func (r *Repository) GetSearch(ctx context.Context, searchID int64) (*domain.Search, error) {
	s := &domain.Search{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, COALESCE(location_name, ''), COALESCE(location_latitude, 0),
		        COALESCE(location_longitude, 0), COALESCE(location_population, 0)
		 FROM searches WHERE id = $1`,
		searchID,
	).Scan(&s.ID, &s.LocationName, &s.Latitude, &s.Longitude, &s.Population)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSearchNotFound
		}
		return nil, fmt.Errorf("query search id=%d: %w", searchID, err)
	}

	return s, nil
}

// Get search ids for page
func (r *Repository) GetSearchIDsPaginated(ctx context.Context, page, limit int) ([]int64, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM searches ORDER BY id LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query search ids for page %d: %w", page, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan search id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search ids: %w", err)
	}
	return ids, nil
}

// Count total searches
func (r *Repository) CountSearches(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM searches`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count searches: %w", err)
	}
	return total, nil
}
