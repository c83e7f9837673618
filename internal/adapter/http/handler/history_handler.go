package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
)

// HistoryService defines the behavior needed by HistoryHandler.
type HistoryService interface {
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionHistoryEntry, error)
	ListByReference(ctx context.Context, referenceID string) ([]*domain.TransactionHistoryEntry, error)
	GetBalanceAt(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)
}

// HistoryHandler handles transaction history requests.
type HistoryHandler struct {
	historyUC HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyUC HistoryService) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC}
}

// ListByAccount lists history entries of an account, newest first.
func (h *HistoryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))

	entries, err := h.historyUC.ListByAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListHistoryResponse{
		Entries: dto.HistoryFromDomain(entries),
		Limit:   limit,
		Offset:  offset,
	})
}

// ListByReference lists every entry written under a reference id.
func (h *HistoryHandler) ListByReference(w http.ResponseWriter, r *http.Request) {
	referenceID := chi.URLParam(r, "reference")
	if referenceID == "" {
		writeError(w, http.StatusBadRequest, "missing reference ID", "")
		return
	}

	entries, err := h.historyUC.ListByReference(r.Context(), referenceID)
	if err != nil {
		writeDomainError(w, "failed to list history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListHistoryResponse{Entries: dto.HistoryFromDomain(entries)})
}

// BalanceAt returns the balance of an account at ?at= (RFC 3339).
func (h *HistoryHandler) BalanceAt(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	at, err := parseTimeQuery(r, "at")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid at parameter", err.Error())
		return
	}

	balance, err := h.historyUC.GetBalanceAt(r.Context(), accountID, at)
	if err != nil {
		writeDomainError(w, "failed to get historical balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance.StringFixed(2),
		At:        &at,
	})
}
