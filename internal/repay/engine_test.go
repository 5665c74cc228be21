package repay

import (
	"context"
	"testing"
	"time"
)

type stubVisibility struct {
	signed map[string]bool
}

func (v *stubVisibility) ContractSigned(_ context.Context, loanNumber string) (bool, error) {
	return v.signed[loanNumber], nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplyPaymentStatusTransitions(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	ids := engine.AddInstallments("LN-100", 1001, []ScheduleItem{{DueDate: day(2026, time.March, 1), Amount: 100}})

	summary, err := engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 40, PaidDate: day(2026, time.February, 20),
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if summary.Status != StatusPartial {
		t.Fatalf("expected partial after 40 of 100, got %s", summary.Status)
	}
	if summary.Remaining != 60 {
		t.Fatalf("expected remaining 60, got %v", summary.Remaining)
	}

	summary, err = engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 60, PaidDate: day(2026, time.February, 25),
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if summary.Status != StatusPaid {
		t.Fatalf("expected paid after full amount, got %s", summary.Status)
	}
	if summary.TotalPaid != 100 {
		t.Fatalf("expected total paid 100, got %v", summary.TotalPaid)
	}
}

func TestOverpaymentReadsAsPaid(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	ids := engine.AddInstallments("LN-101", 1001, []ScheduleItem{{DueDate: day(2026, time.March, 1), Amount: 100}})

	summary, err := engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 150, PaidDate: day(2026, time.February, 20),
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if summary.Status != StatusPaid {
		t.Fatalf("overpaid installment should be paid, got %s", summary.Status)
	}
	if summary.Remaining != 0 {
		t.Fatalf("remaining should clamp to 0, got %v", summary.Remaining)
	}
	if summary.TotalPaid != 150 {
		t.Fatalf("total paid should keep the full 150, got %v", summary.TotalPaid)
	}
}

func TestLateFeeChargedOncePerInstallment(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	ids := engine.AddInstallments("LN-102", 1001, []ScheduleItem{{DueDate: day(2026, time.January, 10), Amount: 200}})

	summary, err := engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 50, PaidDate: day(2026, time.January, 15),
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if summary.LateFeeCharged != 50 {
		t.Fatalf("late payment should charge the flat fee, got %v", summary.LateFeeCharged)
	}

	summary, err = engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 50, PaidDate: day(2026, time.January, 20),
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if summary.LateFeeCharged != 0 {
		t.Fatalf("second late payment must not charge another fee, got %v", summary.LateFeeCharged)
	}
	if summary.LateFeeTotal != 50 {
		t.Fatalf("fee total should stay 50, got %v", summary.LateFeeTotal)
	}
}

func TestOnTimePaymentHasNoFee(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	ids := engine.AddInstallments("LN-103", 1001, []ScheduleItem{{DueDate: day(2026, time.January, 10), Amount: 200}})

	summary, err := engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 200, PaidDate: day(2026, time.January, 10),
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if summary.LateFeeCharged != 0 {
		t.Fatalf("due-date payment should carry no fee, got %v", summary.LateFeeCharged)
	}
}

func TestOverrideLateFeeIsTrustedVerbatim(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	ids := engine.AddInstallments("LN-104", 1001, []ScheduleItem{{DueDate: day(2026, time.March, 1), Amount: 100}})

	summary, err := engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 100, PaidDate: day(2026, time.February, 1),
		OverrideLateFee: true, LateFee: 12.5,
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if summary.LateFeeCharged != 12.5 {
		t.Fatalf("override fee should pass through, got %v", summary.LateFeeCharged)
	}
}

func TestApplyPaymentRejectsBadInput(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	ids := engine.AddInstallments("LN-105", 1001, []ScheduleItem{{DueDate: day(2026, time.March, 1), Amount: 100}})

	if _, err := engine.ApplyPayment(context.Background(), PaymentInput{InstallmentID: ids[0], Amount: 0}); err != ErrAmountNotPositive {
		t.Fatalf("expected ErrAmountNotPositive, got %v", err)
	}
	if _, err := engine.ApplyPayment(context.Background(), PaymentInput{InstallmentID: 9999, Amount: 10}); err != ErrInstallmentNotFound {
		t.Fatalf("expected ErrInstallmentNotFound, got %v", err)
	}
	if _, err := engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 10, LoanNumber: "LN-OTHER",
	}); err != ErrInstallmentMismatch {
		t.Fatalf("expected ErrInstallmentMismatch for wrong loan, got %v", err)
	}
	if _, err := engine.ApplyPayment(context.Background(), PaymentInput{
		InstallmentID: ids[0], Amount: 10, ClientID: 42,
	}); err != ErrInstallmentMismatch {
		t.Fatalf("expected ErrInstallmentMismatch for wrong client, got %v", err)
	}
}

func TestListByClientHidesUnsignedLoans(t *testing.T) {
	vis := &stubVisibility{signed: map[string]bool{"LN-SIGNED": true}}
	engine := NewMemoryEngine(50, vis)
	engine.AddInstallments("LN-SIGNED", 1001, []ScheduleItem{{DueDate: day(2026, time.March, 1), Amount: 100}})
	engine.AddInstallments("LN-UNSIGNED", 1001, []ScheduleItem{{DueDate: day(2026, time.March, 8), Amount: 100}})

	visible, err := engine.ListByClient(context.Background(), 1001, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].LoanNumber != "LN-SIGNED" {
		t.Fatalf("expected only the signed loan's installment, got %+v", visible)
	}

	all, err := engine.ListByClient(context.Background(), 1001, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("includeHidden should return both installments, got %d", len(all))
	}

	vis.signed["LN-UNSIGNED"] = true
	visible, err = engine.ListByClient(context.Background(), 1001, false)
	if err != nil {
		t.Fatalf("list after sign: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("signing should reveal the installments, got %d", len(visible))
	}
}

func TestListByClientOrdersByDueDate(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	engine.AddInstallments("LN-106", 1001, []ScheduleItem{
		{DueDate: day(2026, time.March, 15), Amount: 100},
		{DueDate: day(2026, time.March, 1), Amount: 100},
		{DueDate: day(2026, time.March, 8), Amount: 100},
	})

	out, err := engine.ListByClient(context.Background(), 1001, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(out); i++ {
		if out[i].DueDate.Before(out[i-1].DueDate) {
			t.Fatalf("installments out of order: %v before %v", out[i].DueDate, out[i-1].DueDate)
		}
	}
}

func TestListPaymentsKeepsFullHistory(t *testing.T) {
	engine := NewMemoryEngine(50, nil)
	ids := engine.AddInstallments("LN-107", 1001, []ScheduleItem{{DueDate: day(2026, time.March, 1), Amount: 100}})

	for _, amount := range []float64{30, 30, 40} {
		if _, err := engine.ApplyPayment(context.Background(), PaymentInput{
			InstallmentID: ids[0], Amount: amount, PaidDate: day(2026, time.February, 20),
		}); err != nil {
			t.Fatalf("apply payment: %v", err)
		}
	}

	history, err := engine.ListPayments(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(history))
	}

	inst, err := engine.Get(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if inst.PaidAmount != 100 || inst.Status != StatusPaid {
		t.Fatalf("cached totals should match the ledger: %+v", inst)
	}
}
