package domain

import "time"

// Tour is one bookable trip in the Explore California catalog.
type Tour struct {
	ID          int
	Title       string
	Description *string
	Price       float64
	Duration    string
	Difficulty  string
	Region      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
