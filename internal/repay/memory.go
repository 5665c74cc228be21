package repay

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryEngine is an in-memory Engine for tests and dev mode. It shares the
// fee and status rules with the Postgres engine through the package helpers.
type MemoryEngine struct {
	mu           sync.RWMutex
	flatLateFee  float64
	visibility   LoanVisibility
	nextID       int64
	installments map[int64]Installment
	payments     map[int64][]Payment
}

// NewMemoryEngine builds an in-memory reconciliation engine. A nil visibility
// treats every loan as signed.
func NewMemoryEngine(flatLateFee float64, visibility LoanVisibility) *MemoryEngine {
	return &MemoryEngine{
		flatLateFee:  flatLateFee,
		visibility:   visibility,
		nextID:       1,
		installments: make(map[int64]Installment),
		payments:     make(map[int64][]Payment),
	}
}

// SetVisibility wires the loan side in after construction. The loan store
// needs the engine first, so the two are connected in a second step.
func (e *MemoryEngine) SetVisibility(v LoanVisibility) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visibility = v
}

// AddInstallments creates installment rows from a generated schedule.
func (e *MemoryEngine) AddInstallments(loanNumber string, clientID int64, items []ScheduleItem) []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id := e.nextID
		e.nextID++
		e.installments[id] = Installment{
			ID:         id,
			LoanNumber: loanNumber,
			ClientID:   clientID,
			DueDate:    item.DueDate,
			Amount:     item.Amount,
			Status:     StatusPending,
			CreateDate: time.Now().UTC(),
		}
		ids = append(ids, id)
	}
	return ids
}

// RemoveLoan drops all installments and payment history of one loan.
func (e *MemoryEngine) RemoveLoan(loanNumber string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, inst := range e.installments {
		if inst.LoanNumber == loanNumber {
			delete(e.installments, id)
			delete(e.payments, id)
		}
	}
}

// InstallmentCount reports how many installments a loan has.
func (e *MemoryEngine) InstallmentCount(loanNumber string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, inst := range e.installments {
		if inst.LoanNumber == loanNumber {
			n++
		}
	}
	return n
}

// ApplyPayment mirrors the Postgres engine's reconciliation step.
func (e *MemoryEngine) ApplyPayment(_ context.Context, in PaymentInput) (Summary, error) {
	if in.Amount <= 0 {
		return Summary{}, ErrAmountNotPositive
	}
	if in.PaidDate.IsZero() {
		in.PaidDate = time.Now().UTC()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.installments[in.InstallmentID]
	if !ok {
		return Summary{}, ErrInstallmentNotFound
	}
	if (in.LoanNumber != "" && in.LoanNumber != inst.LoanNumber) ||
		(in.ClientID != 0 && in.ClientID != inst.ClientID) {
		return Summary{}, ErrInstallmentMismatch
	}

	fee := lateFeeFor(inst, in, e.flatLateFee)

	p := Payment{
		ID:            uuid.NewString(),
		InstallmentID: inst.ID,
		LoanNumber:    inst.LoanNumber,
		ClientID:      inst.ClientID,
		Amount:        in.Amount,
		LateFee:       fee,
		PaidDate:      in.PaidDate,
		PaymentMethod: in.PaymentMethod,
		ReceiptNo:     in.ReceiptNo,
		Remark:        in.Remark,
		CreatedAt:     time.Now().UTC(),
	}
	e.payments[inst.ID] = append(e.payments[inst.ID], p)

	var totalPaid, totalFee float64
	for _, pay := range e.payments[inst.ID] {
		totalPaid += pay.Amount
		totalFee += pay.LateFee
	}

	inst.PaidAmount = totalPaid
	inst.LateFee = totalFee
	inst.Status = statusFor(inst.Amount, totalPaid)
	paid := in.PaidDate
	inst.LastPaidDate = &paid
	if in.PaymentMethod != "" {
		inst.PaymentMethod = in.PaymentMethod
	}
	if in.ReceiptNo != "" {
		inst.ReceiptNo = in.ReceiptNo
	}
	if in.Remark != "" {
		inst.Remark = in.Remark
	}
	e.installments[inst.ID] = inst

	return Summary{
		PaymentID:      p.ID,
		InstallmentID:  inst.ID,
		TotalPaid:      round2(totalPaid),
		Remaining:      remainingAmount(inst.Amount, totalPaid),
		LateFeeCharged: fee,
		LateFeeTotal:   round2(totalFee),
		Status:         inst.Status,
		Installment:    inst,
	}, nil
}

// Get fetches one installment by id.
func (e *MemoryEngine) Get(_ context.Context, installmentID int64) (Installment, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inst, ok := e.installments[installmentID]
	if !ok {
		return Installment{}, ErrInstallmentNotFound
	}
	return inst, nil
}

// ListByClient returns the client's installments ordered by due date.
func (e *MemoryEngine) ListByClient(ctx context.Context, clientID int64, includeHidden bool) ([]Installment, error) {
	e.mu.RLock()
	var out []Installment
	for _, inst := range e.installments {
		if inst.ClientID == clientID {
			out = append(out, inst)
		}
	}
	vis := e.visibility
	e.mu.RUnlock()

	if !includeHidden && vis != nil {
		filtered := out[:0]
		for _, inst := range out {
			signed, err := vis.ContractSigned(ctx, inst.LoanNumber)
			if err != nil {
				return nil, err
			}
			if signed {
				filtered = append(filtered, inst)
			}
		}
		out = filtered
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListPayments returns the payment history of one installment.
func (e *MemoryEngine) ListPayments(_ context.Context, installmentID int64) ([]Payment, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	history := e.payments[installmentID]
	out := make([]Payment, len(history))
	copy(out, history)
	return out, nil
}
