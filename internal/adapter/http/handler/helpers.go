package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status. Internal failures expose only
// their opaque message.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)

	details := err.Error()
	if status >= http.StatusInternalServerError && !errors.Is(err, domain.ErrInternal) {
		details = ""
	}

	writeError(w, status, message, details)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSameAccount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransferLimitExceeded):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidAccountID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPaymentID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRefundExceedsPayment):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDecimalQuery parses a required decimal query parameter.
func parseDecimalQuery(r *http.Request, key string) (decimal.Decimal, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return decimal.Zero, errors.New(key + " is required")
	}
	return decimal.NewFromString(val)
}

// parseTimeQuery parses an RFC 3339 query parameter, defaulting to now.
func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, val)
}
