package repay

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInstallmentNotFound means no installment matches the identifier.
	ErrInstallmentNotFound = errors.New("installment not found")
	// ErrInstallmentMismatch means the installment exists but does not belong
	// to the loan or client named in the request.
	ErrInstallmentMismatch = errors.New("installment does not match loan or client")
	// ErrAmountNotPositive rejects zero and negative payment amounts.
	ErrAmountNotPositive = errors.New("payment amount must be positive")
	// ErrReconciliationFailed wraps storage errors during payment application.
	ErrReconciliationFailed = errors.New("payment reconciliation failed")
)

// LoanVisibility reports whether a loan's contract has been signed.
// Installments of unsigned loans are hidden from default listings.
type LoanVisibility interface {
	ContractSigned(ctx context.Context, loanNumber string) (bool, error)
}

// Engine reconciles payments against scheduled installments.
type Engine interface {
	// ApplyPayment records the payment and recomputes the installment's
	// totals and status in one atomic step.
	ApplyPayment(ctx context.Context, in PaymentInput) (Summary, error)
	Get(ctx context.Context, installmentID int64) (Installment, error)
	// ListByClient returns the client's installments. Installments of loans
	// whose contract is unsigned are omitted unless includeHidden is set.
	ListByClient(ctx context.Context, clientID int64, includeHidden bool) ([]Installment, error)
	ListPayments(ctx context.Context, installmentID int64) ([]Payment, error)
}

// statusFor derives installment status from its totals. The paid check runs
// first so an overpaid installment never reads as partial.
func statusFor(scheduled, totalPaid float64) string {
	switch {
	case round2(totalPaid) >= round2(scheduled):
		return StatusPaid
	case totalPaid <= 0:
		return StatusPending
	default:
		return StatusPartial
	}
}

// lateFeeFor decides the fee attached to this payment. An override is trusted
// verbatim. Otherwise the flat fee is charged at most once per installment,
// and only when the payment lands after the due date on a not-yet-paid row.
func lateFeeFor(inst Installment, in PaymentInput, flatFee float64) float64 {
	if in.OverrideLateFee {
		return in.LateFee
	}
	if inst.LateFee > 0 {
		return 0
	}
	if !dateOnly(in.PaidDate).After(dateOnly(inst.DueDate)) {
		return 0
	}
	if round2(inst.PaidAmount) >= round2(inst.Amount) {
		return 0
	}
	return flatFee
}

func remainingAmount(scheduled, totalPaid float64) float64 {
	rem := round2(scheduled - totalPaid)
	if rem < 0 {
		return 0
	}
	return rem
}

// dateOnly truncates to a calendar date so lateness is judged by day, not
// clock time.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
