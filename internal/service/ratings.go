// Package service implements the tour rating business rules on top of the
// repositories. It validates referenced entities, maps persistence failures
// to business errors, and keeps transport concerns out.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/explorecali/tours-api/internal/domain"
	"github.com/explorecali/tours-api/internal/repository"
)

// Business-rule failures surfaced to the transport layer.
var (
	ErrTourNotFound     = errors.New("tour not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrRatingNotFound   = errors.New("rating not found")
	ErrRatingExists     = errors.New("rating already exists")
	ErrNoRatings        = errors.New("tour has no ratings")
)

// TourStore is the slice of the tour repository the service depends on.
type TourStore interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// CustomerStore is the slice of the customer repository the service depends on.
type CustomerStore interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// RatingStore is the persistence contract for tour ratings.
type RatingStore interface {
	Create(ctx context.Context, params repository.RatingCreateParams) (domain.TourRating, error)
	ListByTour(ctx context.Context, tourID int) ([]domain.TourRating, error)
	Average(ctx context.Context, tourID int) (domain.RatingAggregate, error)
	Update(ctx context.Context, tourID, customerID, score int, comment *string) (domain.TourRating, error)
	Patch(ctx context.Context, tourID, customerID int, patch domain.RatingPatch) (domain.TourRating, error)
	Delete(ctx context.Context, tourID, customerID int) error
	CreateMany(ctx context.Context, tourID, score int, customerIDs []int) ([]domain.TourRating, error)
}

// TourRatings coordinates rating operations across the stores.
type TourRatings struct {
	tours     TourStore
	customers CustomerStore
	ratings   RatingStore
}

// NewTourRatings wires the service with its collaborators.
func NewTourRatings(tours TourStore, customers CustomerStore, ratings RatingStore) *TourRatings {
	return &TourRatings{tours: tours, customers: customers, ratings: ratings}
}

// CreateNew records a customer's rating of a tour. The referenced tour and
// customer must exist, and the pair must not have rated before.
func (s *TourRatings) CreateNew(ctx context.Context, tourID, customerID, score int, comment *string) (domain.TourRating, error) {
	if err := s.verifyTour(ctx, tourID); err != nil {
		return domain.TourRating{}, err
	}
	if err := s.verifyCustomer(ctx, customerID); err != nil {
		return domain.TourRating{}, err
	}

	rating, err := s.ratings.Create(ctx, repository.RatingCreateParams{
		TourID:     tourID,
		CustomerID: customerID,
		Score:      score,
		Comment:    comment,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return domain.TourRating{}, fmt.Errorf("customer %d already rated tour %d: %w", customerID, tourID, ErrRatingExists)
		}
		if errors.Is(err, repository.ErrNotFound) {
			// Tour or customer vanished between verification and insert.
			return domain.TourRating{}, ErrTourNotFound
		}
		return domain.TourRating{}, err
	}
	return rating, nil
}

// LookupRatings returns every rating recorded for a tour.
func (s *TourRatings) LookupRatings(ctx context.Context, tourID int) ([]domain.TourRating, error) {
	if err := s.verifyTour(ctx, tourID); err != nil {
		return nil, err
	}
	return s.ratings.ListByTour(ctx, tourID)
}

// GetAverageScore computes the arithmetic mean over a tour's ratings. A tour
// with no ratings yields ErrNoRatings.
func (s *TourRatings) GetAverageScore(ctx context.Context, tourID int) (float64, error) {
	if err := s.verifyTour(ctx, tourID); err != nil {
		return 0, err
	}

	agg, err := s.ratings.Average(ctx, tourID)
	if err != nil {
		return 0, err
	}
	if agg.Count == 0 {
		return 0, fmt.Errorf("tour %d: %w", tourID, ErrNoRatings)
	}
	return agg.Average, nil
}

// Update replaces both score and comment of an existing rating.
func (s *TourRatings) Update(ctx context.Context, tourID, customerID, score int, comment *string) (domain.TourRating, error) {
	rating, err := s.ratings.Update(ctx, tourID, customerID, score, comment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TourRating{}, ErrRatingNotFound
		}
		return domain.TourRating{}, err
	}
	return rating, nil
}

// UpdateSome applies a sparse patch: only fields carried by the patch
// change. An empty patch returns the stored rating untouched.
func (s *TourRatings) UpdateSome(ctx context.Context, tourID, customerID int, patch domain.RatingPatch) (domain.TourRating, error) {
	rating, err := s.ratings.Patch(ctx, tourID, customerID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TourRating{}, ErrRatingNotFound
		}
		return domain.TourRating{}, err
	}
	return rating, nil
}

// Delete removes a customer's rating of a tour.
func (s *TourRatings) Delete(ctx context.Context, tourID, customerID int) error {
	if err := s.ratings.Delete(ctx, tourID, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRatingNotFound
		}
		return err
	}
	return nil
}

// RateMany gives every listed customer the same score for a tour. The batch
// is atomic: one duplicate or unknown customer fails the whole request.
func (s *TourRatings) RateMany(ctx context.Context, tourID, score int, customerIDs []int) ([]domain.TourRating, error) {
	if err := s.verifyTour(ctx, tourID); err != nil {
		return nil, err
	}

	created, err := s.ratings.CreateMany(ctx, tourID, score, customerIDs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, fmt.Errorf("batch for tour %d: %w", tourID, ErrRatingExists)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return created, nil
}

func (s *TourRatings) verifyTour(ctx context.Context, tourID int) error {
	exists, err := s.tours.Exists(ctx, tourID)
	if err != nil {
		return fmt.Errorf("verify tour %d: %w", tourID, err)
	}
	if !exists {
		return fmt.Errorf("tour %d: %w", tourID, ErrTourNotFound)
	}
	return nil
}

func (s *TourRatings) verifyCustomer(ctx context.Context, customerID int) error {
	exists, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return fmt.Errorf("verify customer %d: %w", customerID, err)
	}
	if !exists {
		return fmt.Errorf("customer %d: %w", customerID, ErrCustomerNotFound)
	}
	return nil
}
