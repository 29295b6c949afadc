package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/explorecali/tours-api/internal/domain"
)

// RatingsRepository persists tour ratings keyed by (tour, customer).
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `
    tour_id,
    customer_id,
    score,
    comment,
    created_at,
    updated_at
`

// RatingCreateParams bundles the fields required to create a rating.
type RatingCreateParams struct {
	TourID     int
	CustomerID int
	Score      int
	Comment    *string
}

// Create inserts a new rating row and returns the stored entity. A second
// rating for the same (tour, customer) pair returns ErrAlreadyExists, an
// unknown tour or customer returns ErrNotFound.
func (r *RatingsRepository) Create(ctx context.Context, params RatingCreateParams) (domain.TourRating, error) {
	query := fmt.Sprintf(`
        INSERT INTO tour_ratings (tour_id, customer_id, score, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, ratingColumns)

	row := r.pool.QueryRow(ctx, query, params.TourID, params.CustomerID, params.Score, params.Comment)
	rating, err := scanRating(row)
	if err != nil {
		return domain.TourRating{}, mapConstraintErr(err)
	}
	return rating, nil
}

// Get retrieves the rating a customer left for a tour.
func (r *RatingsRepository) Get(ctx context.Context, tourID, customerID int) (domain.TourRating, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM tour_ratings
        WHERE tour_id = $1 AND customer_id = $2
    `, ratingColumns)

	rating, err := scanRating(r.pool.QueryRow(ctx, query, tourID, customerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.TourRating{}, ErrNotFound
		}
		return domain.TourRating{}, err
	}
	return rating, nil
}

// ListByTour returns all ratings recorded for a tour in insertion order.
func (r *RatingsRepository) ListByTour(ctx context.Context, tourID int) ([]domain.TourRating, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM tour_ratings
        WHERE tour_id = $1
        ORDER BY created_at, customer_id
    `, ratingColumns)

	rows, err := r.pool.Query(ctx, query, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]domain.TourRating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

// Average returns the mean score and rating count for a tour. Count is zero
// when the tour has no ratings; Average is zero in that case.
func (r *RatingsRepository) Average(ctx context.Context, tourID int) (domain.RatingAggregate, error) {
	const query = `
        SELECT COALESCE(AVG(score), 0)::float8 AS average,
               COUNT(*)::int8 AS count
        FROM tour_ratings
        WHERE tour_id = $1
    `

	var agg domain.RatingAggregate
	err := r.pool.QueryRow(ctx, query, tourID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("aggregate ratings: %w", err)
	}
	return agg, nil
}

// Update replaces both score and comment of an existing rating. A nil
// comment clears the stored one.
func (r *RatingsRepository) Update(ctx context.Context, tourID, customerID, score int, comment *string) (domain.TourRating, error) {
	query := fmt.Sprintf(`
        UPDATE tour_ratings
        SET score = $3,
            comment = $4,
            updated_at = now()
        WHERE tour_id = $1 AND customer_id = $2
        RETURNING %s
    `, ratingColumns)

	rating, err := scanRating(r.pool.QueryRow(ctx, query, tourID, customerID, score, comment))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.TourRating{}, ErrNotFound
		}
		return domain.TourRating{}, err
	}
	return rating, nil
}

// Patch updates only the fields carried by the patch. Absent fields keep
// their stored values; ClearComment removes the comment.
func (r *RatingsRepository) Patch(ctx context.Context, tourID, customerID int, patch domain.RatingPatch) (domain.TourRating, error) {
	query := fmt.Sprintf(`
        UPDATE tour_ratings
        SET score = COALESCE($3, score),
            comment = CASE WHEN $5 THEN NULL ELSE COALESCE($4, comment) END,
            updated_at = now()
        WHERE tour_id = $1 AND customer_id = $2
        RETURNING %s
    `, ratingColumns)

	rating, err := scanRating(r.pool.QueryRow(ctx, query, tourID, customerID, patch.Score, patch.Comment, patch.ClearComment))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.TourRating{}, ErrNotFound
		}
		return domain.TourRating{}, err
	}
	return rating, nil
}

// Delete removes a customer's rating of a tour.
func (r *RatingsRepository) Delete(ctx context.Context, tourID, customerID int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tour_ratings WHERE tour_id = $1 AND customer_id = $2`, tourID, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateMany inserts one rating per customer, all with the same score and no
// comment, inside a single transaction: either every rating is created or
// none are.
func (r *RatingsRepository) CreateMany(ctx context.Context, tourID, score int, customerIDs []int) ([]domain.TourRating, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
        INSERT INTO tour_ratings (tour_id, customer_id, score)
        VALUES ($1,$2,$3)
        RETURNING %s
    `, ratingColumns)

	created := make([]domain.TourRating, 0, len(customerIDs))
	for _, customerID := range customerIDs {
		rating, err := scanRating(tx.QueryRow(ctx, query, tourID, customerID, score))
		if err != nil {
			return nil, mapConstraintErr(err)
		}
		created = append(created, rating)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func scanRating(row pgx.Row) (domain.TourRating, error) {
	var rating domain.TourRating
	err := row.Scan(
		&rating.TourID,
		&rating.CustomerID,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return domain.TourRating{}, err
	}
	return rating, nil
}
