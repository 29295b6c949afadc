package domain

import "time"

// Customer identifies a person who can rate tours.
type Customer struct {
	ID        int
	FirstName string
	LastName  string
	CreatedAt time.Time
}
