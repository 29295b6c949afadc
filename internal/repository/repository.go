package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/explorecali/tours-api/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrAlreadyExists indicates a uniqueness conflict, such as a second rating
// for the same (tour, customer) pair.
var ErrAlreadyExists = errors.New("repository: already exists")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Tours     *ToursRepository
	Customers *CustomersRepository
	Ratings   *RatingsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Tours:     &ToursRepository{pool: pool},
		Customers: &CustomersRepository{pool: pool},
		Ratings:   &RatingsRepository{pool: pool},
	}
}

// mapConstraintErr translates Postgres constraint violations into repository
// sentinels: unique violations become ErrAlreadyExists, foreign-key
// violations (unknown tour or customer) become ErrNotFound.
func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrAlreadyExists
		case "23503":
			return ErrNotFound
		}
	}
	return err
}
