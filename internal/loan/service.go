package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service manages the loan lifecycle: creation with its schedule, schedule
// repair, and the contract-signing visibility gate.
type Service struct {
	repo Repository
}

// NewService creates a new loan service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateResult describes a successful loan creation.
type CreateResult struct {
	LoanNumber string `json:"loanNumber"`
	RepayCount int    `json:"repayCount"`
	Replaced   bool   `json:"replaced,omitempty"`
}

// Create validates the request, generates the amortization schedule, and
// persists loan plus schedule atomically. A duplicate loan number fails with
// ErrDuplicate unless the request carries the replace flag.
func (s *Service) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	ln, firstDue, err := ValidateCreateRequest(req)
	if err != nil {
		return CreateResult{}, err
	}

	if ln.LoanNumber == "" {
		ln.LoanNumber = newLoanNumber()
	}

	schedule := GenerateSchedule(ln.PaymentAmount, ln.Term, ln.RepayAmount, ln.PaymentFrequency, firstDue)

	err = s.repo.CreateWithSchedule(ctx, ln, schedule)
	replaced := false
	if errors.Is(err, ErrDuplicate) && req.ForceReplace {
		err = s.repo.ReplaceWithSchedule(ctx, ln, schedule)
		replaced = true
	}
	if err != nil {
		return CreateResult{}, err
	}

	return CreateResult{LoanNumber: ln.LoanNumber, RepayCount: len(schedule), Replaced: replaced}, nil
}

// Get returns the loan and how many installments its schedule holds. A zero
// count on an existing loan is the repairable partial-failure state.
func (s *Service) Get(ctx context.Context, loanNumber string) (Loan, int, error) {
	ln, err := s.repo.GetByNumber(ctx, loanNumber)
	if err != nil {
		return Loan{}, 0, err
	}
	n, err := s.repo.ScheduleCount(ctx, loanNumber)
	if err != nil {
		return Loan{}, 0, err
	}
	return ln, n, nil
}

// RepairSchedule regenerates and persists the schedule for a loan that was
// committed without one. It refuses to run when installments already exist.
func (s *Service) RepairSchedule(ctx context.Context, loanNumber string) (int, error) {
	ln, err := s.repo.GetByNumber(ctx, loanNumber)
	if err != nil {
		return 0, err
	}

	n, err := s.repo.ScheduleCount(ctx, loanNumber)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrScheduleExists
	}

	schedule := GenerateSchedule(ln.PaymentAmount, ln.Term, ln.RepayAmount, ln.PaymentFrequency, ln.CreatedDate)
	if err := s.repo.InsertSchedule(ctx, ln, schedule); err != nil {
		return 0, err
	}
	return len(schedule), nil
}

// SignContract stores the signed artifact and opens the loan's installments
// to default queries.
func (s *Service) SignContract(ctx context.Context, loanNumber string, clientID int64, photoRef string) error {
	return s.repo.SignContract(ctx, loanNumber, clientID, photoRef)
}

// Records lists loan summaries for one client.
func (s *Service) Records(ctx context.Context, clientID int64) ([]Record, error) {
	return s.repo.RecordsByClient(ctx, clientID)
}

// CustomerInfo returns the contract-signing view for (loanNumber, clientID).
func (s *Service) CustomerInfo(ctx context.Context, loanNumber string, clientID int64) (CustomerInfo, error) {
	return s.repo.CustomerInfo(ctx, loanNumber, clientID)
}

func newLoanNumber() string {
	return fmt.Sprintf("LN-%s", strings.ToUpper(uuid.NewString()[:8]))
}
