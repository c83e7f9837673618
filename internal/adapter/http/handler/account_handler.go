package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	GetAccount(ctx context.Context, id string) (*domain.AccountBalance, error)
	GetBalance(ctx context.Context, id string) (decimal.Decimal, error)
	HasSufficientBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error)
	Deposit(ctx context.Context, input usecase.WalletOperationInput) (*domain.BalanceChangeResult, error)
	Withdraw(ctx context.Context, input usecase.WalletOperationInput) (*domain.BalanceChangeResult, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Get retrieves the balance snapshot of an account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Balance returns the current balance of an account.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	balance, err := h.accountUC.GetBalance(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: id,
		Balance:   balance.StringFixed(2),
	})
}

// Sufficient reports whether the account balance covers ?amount=.
func (h *AccountHandler) Sufficient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	amount, err := parseDecimalQuery(r, "amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	ok, err := h.accountUC.HasSufficientBalance(r.Context(), id, amount)
	if err != nil {
		writeDomainError(w, "failed to check balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SufficientResponse{
		AccountID:  id,
		Amount:     amount.StringFixed(2),
		Sufficient: ok,
	})
}

// Deposit credits an account.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "failed to deposit", h.accountUC.Deposit)
}

// Withdraw debits an account.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "failed to withdraw", h.accountUC.Withdraw)
}

func (h *AccountHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	failure string,
	op func(context.Context, usecase.WalletOperationInput) (*domain.BalanceChangeResult, error),
) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.WalletOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := op(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, failure, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceChangeFromDomain(result))
}
