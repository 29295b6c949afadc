package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/explorecali/tours-api/internal/domain"
)

// ToursRepository provides persistence helpers for the tour catalog.
type ToursRepository struct {
	pool *pgxpool.Pool
}

const tourColumns = `
    id,
    title,
    description,
    price,
    duration,
    difficulty,
    region,
    created_at,
    updated_at
`

// TourCreateParams bundles the fields required to create a tour. ID is
// optional: the seed tool supplies explicit identifiers, everything else
// lets the database assign one.
type TourCreateParams struct {
	ID          *int
	Title       string
	Description *string
	Price       float64
	Duration    string
	Difficulty  string
	Region      string
}

// Create inserts a new tour row and returns the stored entity.
func (r *ToursRepository) Create(ctx context.Context, params TourCreateParams) (domain.Tour, error) {
	var row pgx.Row
	if params.ID != nil {
		query := fmt.Sprintf(`
            INSERT INTO tours (id, title, description, price, duration, difficulty, region)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            RETURNING %s
        `, tourColumns)
		row = r.pool.QueryRow(ctx, query, *params.ID, params.Title, params.Description, params.Price, params.Duration, params.Difficulty, params.Region)
	} else {
		query := fmt.Sprintf(`
            INSERT INTO tours (title, description, price, duration, difficulty, region)
            VALUES ($1,$2,$3,$4,$5,$6)
            RETURNING %s
        `, tourColumns)
		row = r.pool.QueryRow(ctx, query, params.Title, params.Description, params.Price, params.Duration, params.Difficulty, params.Region)
	}

	tour, err := scanTour(row)
	if err != nil {
		return domain.Tour{}, mapConstraintErr(err)
	}
	return tour, nil
}

// Get fetches a tour by its identifier.
func (r *ToursRepository) Get(ctx context.Context, id int) (domain.Tour, error) {
	query := fmt.Sprintf(`SELECT %s FROM tours WHERE id = $1`, tourColumns)
	tour, err := scanTour(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Tour{}, ErrNotFound
		}
		return domain.Tour{}, err
	}
	return tour, nil
}

// List returns the whole catalog ordered by identifier.
func (r *ToursRepository) List(ctx context.Context) ([]domain.Tour, error) {
	query := fmt.Sprintf(`SELECT %s FROM tours ORDER BY id`, tourColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tours := make([]domain.Tour, 0)
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, tour)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tours, nil
}

// Exists reports whether a tour with the given identifier is present.
func (r *ToursRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tours WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// SyncIDSequence realigns the identity sequence after rows were inserted
// with explicit identifiers.
func (r *ToursRepository) SyncIDSequence(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('tours', 'id'), (SELECT COALESCE(MAX(id), 1) FROM tours))`)
	return err
}

func scanTour(row pgx.Row) (domain.Tour, error) {
	var tour domain.Tour
	err := row.Scan(
		&tour.ID,
		&tour.Title,
		&tour.Description,
		&tour.Price,
		&tour.Duration,
		&tour.Difficulty,
		&tour.Region,
		&tour.CreatedAt,
		&tour.UpdatedAt,
	)
	if err != nil {
		return domain.Tour{}, err
	}
	return tour, nil
}
