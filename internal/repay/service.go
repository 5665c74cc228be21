package repay

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lendbook/lendbook/internal/notification"
)

// Service fronts the reconciliation engine and emits notifications for
// accepted payments.
type Service struct {
	engine   Engine
	notifier notification.Notifier
}

// NewService constructs a repayment service.
func NewService(engine Engine, notifier notification.Notifier) *Service {
	return &Service{engine: engine, notifier: notifier}
}

// Pay applies one payment against an installment.
func (s *Service) Pay(ctx context.Context, in PaymentInput) (Summary, error) {
	summary, err := s.engine.ApplyPayment(ctx, in)
	if err != nil {
		return Summary{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPaymentReceived,
			Destination: strconv.FormatInt(summary.Installment.ClientID, 10),
			Body: fmt.Sprintf("Payment of %.2f received for loan %s, installment now %s",
				in.Amount, summary.Installment.LoanNumber, summary.Status),
		})
	}

	return summary, nil
}

// Get fetches one installment.
func (s *Service) Get(ctx context.Context, installmentID int64) (Installment, error) {
	return s.engine.Get(ctx, installmentID)
}

// ListByClient lists a client's installments, hiding unsigned loans unless asked.
func (s *Service) ListByClient(ctx context.Context, clientID int64, includeHidden bool) ([]Installment, error) {
	return s.engine.ListByClient(ctx, clientID, includeHidden)
}

// ListPayments lists the payment history of one installment.
func (s *Service) ListPayments(ctx context.Context, installmentID int64) ([]Payment, error) {
	return s.engine.ListPayments(ctx, installmentID)
}
