package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/explorecali/tours-api/internal/domain"
	"github.com/explorecali/tours-api/internal/service"
)

const maxRequestBody = 1 << 20 // 1 MiB

// validate checks request payloads; violation messages carry the JSON field
// names rather than the Go ones.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ratingRequest is the wire shape for POST and PUT: score is mandatory and
// bounded, comment optional.
type ratingRequest struct {
	CustomerID *int    `json:"customerId" validate:"required,gt=0"`
	Score      *int    `json:"score" validate:"required,min=0,max=5"`
	Comment    *string `json:"comment"`
}

// ratingPatchRequest is the wire shape for PATCH. Score and comment are
// tagged optionals so an omitted field, an explicit null, and a value stay
// distinguishable after decoding.
type ratingPatchRequest struct {
	CustomerID *int             `json:"customerId" validate:"required,gt=0"`
	Score      optional[int]    `json:"score" validate:"-"`
	Comment    optional[string] `json:"comment" validate:"-"`
}

type ratingResponse struct {
	CustomerID int     `json:"customerId"`
	Score      int     `json:"score"`
	Comment    *string `json:"comment,omitempty"`
}

type averageResponse struct {
	Average float64 `json:"average"`
}

// optional tracks whether a JSON field appeared in the payload and whether
// it carried null.
type optional[T any] struct {
	set   bool
	null  bool
	value T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(data, []byte("null")) {
		o.null = true
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

func (s *Server) handleCreateRating(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if details, ok := validateStruct(req); !ok {
		s.respondValidationError(w, details)
		return
	}

	s.logger.Printf("create rating: tour=%d customer=%d score=%d", tourID, *req.CustomerID, *req.Score)

	rating, err := s.ratings.CreateNew(r.Context(), tourID, *req.CustomerID, *req.Score, normalizeStringPtr(req.Comment))
	if err != nil {
		s.respondServiceError(w, err, "create rating")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/tours/%d/ratings/%d", tourID, rating.CustomerID))
	s.respondJSON(w, http.StatusCreated, toRatingResponse(rating))
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	ratings, err := s.ratings.LookupRatings(r.Context(), tourID)
	if err != nil {
		s.respondServiceError(w, err, "list ratings")
		return
	}

	items := make([]ratingResponse, 0, len(ratings))
	for _, rating := range ratings {
		items = append(items, toRatingResponse(rating))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetAverage(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	average, err := s.ratings.GetAverageScore(r.Context(), tourID)
	if err != nil {
		s.respondServiceError(w, err, "average score")
		return
	}
	s.respondJSON(w, http.StatusOK, averageResponse{Average: average})
}

func (s *Server) handlePutRating(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if details, ok := validateStruct(req); !ok {
		s.respondValidationError(w, details)
		return
	}

	s.logger.Printf("replace rating: tour=%d customer=%d score=%d", tourID, *req.CustomerID, *req.Score)

	rating, err := s.ratings.Update(r.Context(), tourID, *req.CustomerID, *req.Score, normalizeStringPtr(req.Comment))
	if err != nil {
		s.respondServiceError(w, err, "replace rating")
		return
	}
	s.respondJSON(w, http.StatusOK, toRatingResponse(rating))
}

func (s *Server) handlePatchRating(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req ratingPatchRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if details, ok := validateStruct(req); !ok {
		s.respondValidationError(w, details)
		return
	}

	patch, details := buildRatingPatch(req)
	if details != nil {
		s.respondValidationError(w, details)
		return
	}

	s.logger.Printf("patch rating: tour=%d customer=%d", tourID, *req.CustomerID)

	rating, err := s.ratings.UpdateSome(r.Context(), tourID, *req.CustomerID, patch)
	if err != nil {
		s.respondServiceError(w, err, "patch rating")
		return
	}
	s.respondJSON(w, http.StatusOK, toRatingResponse(rating))
}

// buildRatingPatch converts the wire optionals into a domain patch. A null
// score is rejected, a null comment clears the stored one.
func buildRatingPatch(req ratingPatchRequest) (domain.RatingPatch, map[string]string) {
	var patch domain.RatingPatch
	if req.Score.set {
		if req.Score.null {
			return domain.RatingPatch{}, map[string]string{"score": "must not be null"}
		}
		if req.Score.value < 0 || req.Score.value > 5 {
			return domain.RatingPatch{}, map[string]string{"score": "must be between 0 and 5"}
		}
		score := req.Score.value
		patch.Score = &score
	}
	if req.Comment.set {
		if req.Comment.null {
			patch.ClearComment = true
		} else {
			comment := req.Comment.value
			if normalized := normalizeStringPtr(&comment); normalized == nil {
				patch.ClearComment = true
			} else {
				patch.Comment = normalized
			}
		}
	}
	return patch, nil
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	customerID, err := intParam(r, "customerID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	s.logger.Printf("delete rating: tour=%d customer=%d", tourID, customerID)

	if err := s.ratings.Delete(r.Context(), tourID, customerID); err != nil {
		s.respondServiceError(w, err, "delete rating")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBatchRatings(w http.ResponseWriter, r *http.Request) {
	tourID, err := tourIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	score, err := scoreQueryParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	var customerIDs []int
	if err := decodeJSONBody(w, r, &customerIDs); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if len(customerIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "customer list must not be empty")
		return
	}
	if err := validate.Var(customerIDs, "dive,gt=0"); err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "customer ids must be positive")
		return
	}

	s.logger.Printf("batch ratings: tour=%d score=%d customers=%d", tourID, score, len(customerIDs))

	if _, err := s.ratings.RateMany(r.Context(), tourID, score, customerIDs); err != nil {
		s.respondServiceError(w, err, "batch ratings")
		return
	}
	s.respondJSON(w, http.StatusCreated, nil)
}

func scoreQueryParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("score"))
	if raw == "" {
		return 0, fmt.Errorf("score query parameter is required")
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid score value")
	}
	if score < 0 || score > 5 {
		return 0, fmt.Errorf("score must be between 0 and 5")
	}
	return score, nil
}

// respondServiceError translates business-rule failures into transport
// statuses; anything unrecognized is a 500.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrTourNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrRatingNotFound),
		errors.Is(err, service.ErrNoRatings):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrRatingExists):
		s.respondError(w, http.StatusConflict, "CONFLICT", "Rating already exists for this customer and tour")
	default:
		s.logger.Printf("%s error: %v", op, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process request")
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondValidationError(w http.ResponseWriter, details map[string]string) {
	s.respondJSON(w, http.StatusBadRequest, errorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "Request validation failed",
		Details: details,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

// validateStruct runs the validator and flattens violations into a
// field-to-message map.
func validateStruct(val interface{}) (map[string]string, bool) {
	err := validate.Struct(val)
	if err == nil {
		return nil, true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "invalid payload"}, false
	}
	details := make(map[string]string, len(verrs))
	for _, fieldErr := range verrs {
		details[fieldErr.Field()] = validationMessage(fieldErr)
	}
	return details, false
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed %s validation", fieldErr.Tag())
	}
}

func toRatingResponse(rating domain.TourRating) ratingResponse {
	return ratingResponse{
		CustomerID: rating.CustomerID,
		Score:      rating.Score,
		Comment:    rating.Comment,
	}
}

func normalizeStringPtr(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	if val == "" {
		return nil
	}
	return &val
}

func tourIDParam(r *http.Request) (int, error) {
	return intParam(r, "tourID")
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return value, nil
}
