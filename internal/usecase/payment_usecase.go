package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// PaymentUseCase debits wallets for merchant payments and credits refunds.
type PaymentUseCase struct {
	engine  BalanceEngine
	history HistoryRepository
	audit   AuditSink
	idGen   IDGenerator
	metrics OperationRecorder
	logger  zerolog.Logger
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(engine BalanceEngine, history HistoryRepository, audit AuditSink, idGen IDGenerator, metrics OperationRecorder, logger zerolog.Logger) *PaymentUseCase {
	if metrics == nil {
		metrics = noopOperationRecorder{}
	}

	return &PaymentUseCase{
		engine:  engine,
		history: history,
		audit:   audit,
		idGen:   idGen,
		metrics: metrics,
		logger:  logger,
	}
}

// PayInput represents input for a payment.
type PayInput struct {
	AccountID  string
	MerchantID string
	OrderID    string
	Amount     decimal.Decimal
	ActorID    string
}

// Pay debits the wallet with kind PAYMENT.
func (uc *PaymentUseCase) Pay(ctx context.Context, input PayInput) (*domain.Payment, error) {
	payment := &domain.Payment{
		AccountID:  strings.TrimSpace(input.AccountID),
		MerchantID: input.MerchantID,
		OrderID:    input.OrderID,
		Amount:     input.Amount,
	}

	if err := payment.Validate(); err != nil {
		uc.metrics.RecordOperation(OperationPayment, outcomeOf(err), input.Amount)
		return nil, err
	}

	payment.ID = domain.PaymentReferencePrefix + uc.idGen.Generate()

	result, err := uc.engine.Decrease(ctx, MutationInput{
		AccountID:   payment.AccountID,
		Amount:      payment.Amount,
		Kind:        domain.KindPayment,
		Description: payment.Description(),
		ReferenceID: payment.ID,
		ActorID:     input.ActorID,
	})
	uc.metrics.RecordOperation(OperationPayment, outcomeOf(err), payment.Amount)

	if err != nil {
		uc.logger.Warn().Err(err).Str("payment_id", payment.ID).Str("account_id", payment.AccountID).Msg("payment failed")
		return nil, err
	}

	payment.Result = result

	uc.audit.LogSuccess(ctx, domain.AuditCategoryPayment, domain.ResourcePayment, payment.ID, "payment processed", domain.JSON{
		"account_id":    payment.AccountID,
		"merchant_id":   payment.MerchantID,
		"order_id":      payment.OrderID,
		"amount":        payment.Amount.StringFixed(2),
		"balance_after": result.BalanceAfter.StringFixed(2),
	})

	return payment, nil
}

// RefundInput represents input for a refund.
type RefundInput struct {
	PaymentID string
	AccountID string
	Amount    decimal.Decimal
	Reason    string
	ActorID   string
}

// Refund credits the wallet with kind REFUND referencing an earlier payment.
// The payment must have debited the same account, and the refunds recorded
// against it, this one included, may not exceed the paid amount. Refund
// entries carry the payment id as their reference.
func (uc *PaymentUseCase) Refund(ctx context.Context, input RefundInput) (*domain.Refund, error) {
	refund := &domain.Refund{
		PaymentID: strings.TrimSpace(input.PaymentID),
		AccountID: strings.TrimSpace(input.AccountID),
		Amount:    input.Amount,
		Reason:    input.Reason,
	}

	if err := refund.Validate(); err != nil {
		uc.metrics.RecordOperation(OperationRefund, outcomeOf(err), input.Amount)
		return nil, err
	}

	refund.ID = domain.RefundReferencePrefix + uc.idGen.Generate()

	var result *domain.BalanceChangeResult
	err := uc.engine.RunInTransaction(ctx, func(ctx context.Context) error {
		// serializes refunds of the account
		if _, err := uc.engine.GetBalanceForUpdate(ctx, refund.AccountID); err != nil {
			return err
		}

		if err := uc.checkRefundable(ctx, refund); err != nil {
			return err
		}

		var err error
		result, err = uc.engine.Increase(ctx, MutationInput{
			AccountID:   refund.AccountID,
			Amount:      refund.Amount,
			Kind:        domain.KindRefund,
			Description: refund.Description(),
			ReferenceID: refund.PaymentID,
			ActorID:     input.ActorID,
		})
		return err
	})
	uc.metrics.RecordOperation(OperationRefund, outcomeOf(err), refund.Amount)

	if err != nil {
		uc.logger.Warn().Err(err).Str("refund_id", refund.ID).Str("payment_id", refund.PaymentID).Msg("refund failed")
		if domain.IsBusinessError(err) {
			uc.audit.LogWarning(ctx, domain.AuditCategoryRefund, domain.ResourcePayment, refund.PaymentID, "refund rejected: "+err.Error())
		}
		return nil, err
	}

	refund.Result = result

	uc.audit.LogSuccess(ctx, domain.AuditCategoryRefund, domain.ResourcePayment, refund.PaymentID, "payment refunded", domain.JSON{
		"refund_id":     refund.ID,
		"account_id":    refund.AccountID,
		"amount":        refund.Amount.StringFixed(2),
		"balance_after": result.BalanceAfter.StringFixed(2),
	})

	return refund, nil
}

func (uc *PaymentUseCase) checkRefundable(ctx context.Context, refund *domain.Refund) error {
	entries, err := uc.history.ListByReference(ctx, refund.PaymentID)
	if err != nil {
		return domain.NewInternalError("refund", domain.ReasonStorage, err)
	}

	var paid, refunded decimal.Decimal
	found := false

	for _, e := range entries {
		if e.AccountID != refund.AccountID {
			continue
		}
		switch e.Kind {
		case domain.KindPayment:
			paid = paid.Add(e.Amount.Abs())
			found = true
		case domain.KindRefund:
			refunded = refunded.Add(e.Amount.Abs())
		}
	}

	if !found {
		return fmt.Errorf("%w: %s on account %s", domain.ErrPaymentNotFound, refund.PaymentID, refund.AccountID)
	}

	if refunded.Add(refund.Amount).GreaterThan(paid) {
		return fmt.Errorf("%w: paid %s, refunded %s, requested %s", domain.ErrRefundExceedsPayment,
			paid.StringFixed(2), refunded.StringFixed(2), refund.Amount.StringFixed(2))
	}

	return nil
}
