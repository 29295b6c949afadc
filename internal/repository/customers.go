package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/explorecali/tours-api/internal/domain"
)

// CustomersRepository provides persistence helpers for customers.
type CustomersRepository struct {
	pool *pgxpool.Pool
}

const customerColumns = `
    id,
    first_name,
    last_name,
    created_at
`

// CustomerCreateParams bundles the fields required to create a customer.
// ID is optional, as with tours.
type CustomerCreateParams struct {
	ID        *int
	FirstName string
	LastName  string
}

// Create inserts a new customer row and returns the stored entity.
func (r *CustomersRepository) Create(ctx context.Context, params CustomerCreateParams) (domain.Customer, error) {
	var row pgx.Row
	if params.ID != nil {
		query := fmt.Sprintf(`
            INSERT INTO customers (id, first_name, last_name)
            VALUES ($1,$2,$3)
            RETURNING %s
        `, customerColumns)
		row = r.pool.QueryRow(ctx, query, *params.ID, params.FirstName, params.LastName)
	} else {
		query := fmt.Sprintf(`
            INSERT INTO customers (first_name, last_name)
            VALUES ($1,$2)
            RETURNING %s
        `, customerColumns)
		row = r.pool.QueryRow(ctx, query, params.FirstName, params.LastName)
	}

	customer, err := scanCustomer(row)
	if err != nil {
		return domain.Customer{}, mapConstraintErr(err)
	}
	return customer, nil
}

// Get fetches a customer by its identifier.
func (r *CustomersRepository) Get(ctx context.Context, id int) (domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Customer{}, ErrNotFound
		}
		return domain.Customer{}, err
	}
	return customer, nil
}

// Exists reports whether a customer with the given identifier is present.
func (r *CustomersRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// SyncIDSequence realigns the identity sequence after rows were inserted
// with explicit identifiers.
func (r *CustomersRepository) SyncIDSequence(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('customers', 'id'), (SELECT COALESCE(MAX(id), 1) FROM customers))`)
	return err
}

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var customer domain.Customer
	err := row.Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.CreatedAt,
	)
	if err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}
