package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   string              `json:"error"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
	ItemIDs []uuid.UUID         `json:"item_ids,omitempty"`
	OrderID *uuid.UUID          `json:"order_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, status int, resp ErrorResponse) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	respondJSON(w, status, resp)
}

// writeError maps service errors onto HTTP responses. Anything it does not
// recognise is logged and reported as a bare internal error.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var (
		sideEffect  *domain.SideEffectError
		validation  *domain.ValidationError
		unavailable *domain.UnavailableItemsError
	)

	switch {
	case errors.As(err, &sideEffect):
		id := sideEffect.Order.ID
		log.Error("order_post_commit_failed", "Order persisted but post-commit actions failed",
			logger.RequestID(r.Context()), map[string]interface{}{"order_id": id.String()}, err)
		respondError(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Order was created but could not be fully processed",
			OrderID: &id,
		})

	case errors.As(err, &unavailable):
		respondError(w, http.StatusBadRequest, ErrorResponse{
			Error:   "One or more menu items are unavailable or not found",
			ItemIDs: unavailable.ItemIDs,
		})

	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Errors: validation.Fields})

	case errors.Is(err, domain.ErrRestaurantInactive):
		respondError(w, http.StatusBadRequest, ErrorResponse{Error: "Restaurant is not active"})

	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed"})

	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, ErrorResponse{Error: "Incorrect username or password"})

	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, ErrorResponse{Error: "Could not validate credentials"})

	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, ErrorResponse{Error: "Not enough permissions"})

	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})

	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, ErrorResponse{Error: err.Error()})

	default:
		log.Error("request_failed", "Unexpected error", logger.RequestID(r.Context()),
			map[string]interface{}{"method": r.Method, "path": r.URL.Path}, err)
		respondError(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(domain.FieldError{Field: name, Message: "must be a valid UUID"})
	}
	return id, nil
}

// pageParams reads skip and limit from the query string.
func pageParams(r *http.Request, defaultLimit int) (interfaces.Page, error) {
	page := interfaces.Page{Limit: defaultLimit}
	var fields []domain.FieldError

	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields = append(fields, domain.FieldError{Field: "skip", Message: "must be a non-negative integer"})
		}
		page.Skip = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageLimit {
			fields = append(fields, domain.FieldError{Field: "limit", Message: "must be between 1 and 1000"})
		}
		page.Limit = n
	}

	if len(fields) > 0 {
		return page, domain.NewValidationError(fields...)
	}
	return page, nil
}

const maxPageLimit = 1000
