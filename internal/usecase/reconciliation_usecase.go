package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

const reconcilePageSize = 500

// ReconciliationUseCase verifies balances against the history chain.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	historyRepo HistoryRepository
	ledgerRepo  LedgerRepository
	audit       AuditSink
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	historyRepo HistoryRepository,
	ledgerRepo LedgerRepository,
	audit AuditSink,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		historyRepo: historyRepo,
		ledgerRepo:  ledgerRepo,
		audit:       audit,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	LastChecked       time.Time
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	Version           int64
	EntryCount        int
	Issues            []string
	IsReconciled      bool
}

// ReconcileAccount replays the history chain of an account and compares it
// with the stored balance and version.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.historyRepo.ListChain(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history of %s: %w", accountID, err)
	}

	result := &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: decimal.Zero,
		Version:           account.Version,
		EntryCount:        len(entries),
		LastChecked:       time.Now().UTC(),
	}

	running := decimal.Zero
	for i, entry := range entries {
		if !entry.IsConsistent() {
			result.Issues = append(result.Issues, fmt.Sprintf("entry %d: before %s + amount %s != after %s",
				entry.ID, entry.BalanceBefore.StringFixed(2), entry.Amount.StringFixed(2), entry.BalanceAfter.StringFixed(2)))
		}

		if !entry.BalanceBefore.Equal(running) {
			result.Issues = append(result.Issues, fmt.Sprintf("entry %d: before %s does not continue previous after %s",
				entry.ID, entry.BalanceBefore.StringFixed(2), running.StringFixed(2)))
		}

		if entry.BalanceAfter.IsNegative() {
			result.Issues = append(result.Issues, fmt.Sprintf("entry %d: negative balance %s", entry.ID, entry.BalanceAfter.StringFixed(2)))
		}

		if entry.Version != 0 && entry.Version != int64(i+1) {
			result.Issues = append(result.Issues, fmt.Sprintf("entry %d: version %d out of sequence", entry.ID, entry.Version))
		}

		result.CalculatedBalance = result.CalculatedBalance.Add(entry.Amount)
		running = entry.BalanceAfter
	}

	if !running.Equal(account.Balance) {
		result.Issues = append(result.Issues, fmt.Sprintf("last balance after %s differs from stored balance %s",
			running.StringFixed(2), account.Balance.StringFixed(2)))
	}

	if account.Version != int64(len(entries)) {
		result.Issues = append(result.Issues, fmt.Sprintf("version %d differs from entry count %d", account.Version, len(entries)))
	}

	result.Difference = account.Balance.Sub(result.CalculatedBalance)
	result.IsReconciled = len(result.Issues) == 0 && result.Difference.IsZero()

	if !result.IsReconciled {
		uc.audit.LogWarning(ctx, domain.AuditCategoryReconciliation, domain.ResourceAccount, accountID,
			fmt.Sprintf("reconciliation failed with %d issue(s), difference %s", len(result.Issues), result.Difference.StringFixed(2)))
	}

	return result, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += reconcilePageSize {
		accounts, err := uc.accountRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.AccountID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.AccountID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < reconcilePageSize {
			return results, nil
		}
	}
}

// LedgerConsistency is the outcome of the ledger-wide conservation check.
type LedgerConsistency struct {
	CheckedAt    time.Time
	TotalBalance decimal.Decimal
	TotalAmount  decimal.Decimal
	Difference   decimal.Decimal
	Consistent   bool
}

// CheckLedgerConsistency verifies that the sum of balances equals the sum of
// all history amounts. Every account starts at zero, so any difference means
// a write bypassed the history.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) (*LedgerConsistency, error) {
	totalBalance, totalAmount, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return nil, err
	}

	result := &LedgerConsistency{
		CheckedAt:    time.Now().UTC(),
		TotalBalance: totalBalance,
		TotalAmount:  totalAmount,
		Difference:   totalBalance.Sub(totalAmount),
		Consistent:   totalBalance.Equal(totalAmount),
	}

	if !result.Consistent {
		uc.audit.LogWarning(ctx, domain.AuditCategoryReconciliation, domain.ResourceLedger, "ledger",
			fmt.Sprintf("ledger inconsistency detected: balances=%s history=%s difference=%s",
				totalBalance.StringFixed(2), totalAmount.StringFixed(2), result.Difference.StringFixed(2)))
	}

	return result, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	CheckedAt          time.Time
	Discrepancies      []*ReconciliationResult
	TotalAccounts      int
	ReconciledAccounts int
	LedgerConsistent   bool
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	ledger, err := uc.CheckLedgerConsistency(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledger.Consistent,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
