package httpserver

import (
	"errors"
	"net/http"

	"github.com/explorecali/tours-api/internal/domain"
	"github.com/explorecali/tours-api/internal/repository"
)

type tourResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	Difficulty  string  `json:"difficulty"`
	Region      string  `json:"region"`
}

func (s *Server) handleListTours(w http.ResponseWriter, r *http.Request) {
	tours, err := s.repo.Tours.List(r.Context())
	if err != nil {
		s.logger.Printf("list tours error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tours")
		return
	}

	items := make([]tourResponse, 0, len(tours))
	for _, tour := range tours {
		items = append(items, toTourResponse(tour))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	tour, err := s.repo.Tours.Get(r.Context(), tourID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Printf("get tour error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch tour")
		return
	}
	s.respondJSON(w, http.StatusOK, toTourResponse(tour))
}

func toTourResponse(tour domain.Tour) tourResponse {
	return tourResponse{
		ID:          tour.ID,
		Title:       tour.Title,
		Description: tour.Description,
		Price:       tour.Price,
		Duration:    tour.Duration,
		Difficulty:  tour.Difficulty,
		Region:      tour.Region,
	}
}
