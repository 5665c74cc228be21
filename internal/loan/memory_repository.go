package loan

import (
	"context"
	"sort"
	"sync"

	"github.com/lendbook/lendbook/internal/repay"
)

type memoryRepository struct {
	mu           sync.RWMutex
	loans        map[string]Loan
	engine       *repay.MemoryEngine
	failSchedule bool
}

// NewMemoryRepository builds an in-memory loan store for tests and dev mode.
// Installment rows are written into the supplied memory engine so the repay
// side sees them.
func NewMemoryRepository(engine *repay.MemoryEngine) Repository {
	return &memoryRepository{loans: make(map[string]Loan), engine: engine}
}

func (r *memoryRepository) CreateWithSchedule(_ context.Context, ln Loan, schedule []ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.loans[ln.LoanNumber]; exists {
		return ErrDuplicate
	}
	r.loans[ln.LoanNumber] = ln

	if r.failSchedule {
		return ErrScheduleMissing
	}

	r.engine.AddInstallments(ln.LoanNumber, ln.CustomerID, toItems(schedule))
	return nil
}

func (r *memoryRepository) ReplaceWithSchedule(_ context.Context, ln Loan, schedule []ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.engine.RemoveLoan(ln.LoanNumber)
	r.loans[ln.LoanNumber] = ln
	r.engine.AddInstallments(ln.LoanNumber, ln.CustomerID, toItems(schedule))
	return nil
}

func (r *memoryRepository) GetByNumber(_ context.Context, loanNumber string) (Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ln, ok := r.loans[loanNumber]
	if !ok {
		return Loan{}, ErrNotFound
	}
	return ln, nil
}

func (r *memoryRepository) ScheduleCount(_ context.Context, loanNumber string) (int, error) {
	return r.engine.InstallmentCount(loanNumber), nil
}

func (r *memoryRepository) InsertSchedule(_ context.Context, ln Loan, schedule []ScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loans[ln.LoanNumber]; !ok {
		return ErrNotFound
	}
	if r.engine.InstallmentCount(ln.LoanNumber) > 0 {
		return ErrScheduleExists
	}
	r.engine.AddInstallments(ln.LoanNumber, ln.CustomerID, toItems(schedule))
	return nil
}

func (r *memoryRepository) SignContract(_ context.Context, loanNumber string, clientID int64, photoRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ln, ok := r.loans[loanNumber]
	if !ok || ln.CustomerID != clientID {
		return ErrClientMismatch
	}
	ln.SignedPhoto = photoRef
	ln.ContractSigned = true
	r.loans[loanNumber] = ln
	return nil
}

func (r *memoryRepository) ContractSigned(_ context.Context, loanNumber string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ln, ok := r.loans[loanNumber]
	if !ok {
		return false, ErrNotFound
	}
	return ln.ContractSigned, nil
}

func (r *memoryRepository) RecordsByClient(_ context.Context, clientID int64) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []Record
	for _, ln := range r.loans {
		if ln.CustomerID != clientID {
			continue
		}
		records = append(records, Record{
			LoanNumber:     ln.LoanNumber,
			LoanAmount:     ln.LoanAmount,
			InterestAmount: ln.InterestAmount,
			CreatedDate:    ln.CreatedDate,
			PaymentDueDate: ln.PaymentDueDate,
			LenderName:     ln.LenderName,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].LoanNumber < records[j].LoanNumber })
	return records, nil
}

func (r *memoryRepository) CustomerInfo(_ context.Context, loanNumber string, clientID int64) (CustomerInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ln, ok := r.loans[loanNumber]
	if !ok || ln.CustomerID != clientID {
		return CustomerInfo{}, ErrNotFound
	}
	return CustomerInfo{
		LoanNumber:     ln.LoanNumber,
		CustomerID:     ln.CustomerID,
		CustomerName:   ln.CustomerName,
		SignedPhoto:    ln.SignedPhoto,
		ContractSigned: ln.ContractSigned,
	}, nil
}

func toItems(schedule []ScheduleEntry) []repay.ScheduleItem {
	items := make([]repay.ScheduleItem, 0, len(schedule))
	for _, e := range schedule {
		items = append(items, repay.ScheduleItem{DueDate: e.DueDate, Amount: e.Amount})
	}
	return items
}
