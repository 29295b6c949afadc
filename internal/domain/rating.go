package domain

import "time"

// TourRating is one customer's rating of one tour. A (tour, customer) pair
// holds at most one rating.
type TourRating struct {
	TourID     int
	CustomerID int
	Score      int
	Comment    *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RatingPatch describes a sparse update to an existing rating. A nil Score
// or Comment leaves the stored value untouched; ClearComment removes the
// comment entirely.
type RatingPatch struct {
	Score        *int
	Comment      *string
	ClearComment bool
}

// IsZero reports whether the patch changes nothing.
func (p RatingPatch) IsZero() bool {
	return p.Score == nil && p.Comment == nil && !p.ClearComment
}

// RatingAggregate carries the mean score and rating count for a tour.
type RatingAggregate struct {
	Average float64
	Count   int64
}
