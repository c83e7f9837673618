package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	Pay(ctx context.Context, input usecase.PayInput) (*domain.Payment, error)
	Refund(ctx context.Context, input usecase.RefundInput) (*domain.Refund, error)
}

// PaymentHandler handles payment requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Pay debits a wallet for a merchant order.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.paymentUC.Pay(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to process payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Refund credits the wallet back for an earlier payment.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	var req dto.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	refund, err := h.paymentUC.Refund(r.Context(), req.ToUseCaseInput(paymentID))
	if err != nil {
		writeDomainError(w, "failed to process refund", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RefundFromDomain(refund))
}
