package loan

import (
	"errors"
	"strings"
	"testing"
)

func validRequest() CreateRequest {
	return CreateRequest{
		LoanNumber:    "LN-TEST01",
		CustomerID:    1001,
		CustomerName:  "Ana Silva",
		Currency:      "USD",
		LoanAmount:    1000,
		InterestRate:  0.2,
		PaymentAmount: 1200,
		Term:          4,
		CreatedDate:   "2026-03-01",
	}
}

func TestValidateCreateRequestAcceptsValidInput(t *testing.T) {
	ln, firstDue, err := ValidateCreateRequest(validRequest())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ln.Term != 4 || ln.RepayAmount != 300 {
		t.Fatalf("expected derived repayAmount 300 over 4 terms, got term=%d repay=%v", ln.Term, ln.RepayAmount)
	}
	if ln.PaymentFrequency != defaultFrequencyDays {
		t.Fatalf("expected default frequency, got %d", ln.PaymentFrequency)
	}
	if FormatDate(firstDue) != "2026-03-01" {
		t.Fatalf("first due should fall back to createdDate, got %s", FormatDate(firstDue))
	}
}

func TestValidateCreateRequestCollectsAllErrors(t *testing.T) {
	req := CreateRequest{
		InterestRate: 2.0,
		CreatedDate:  "01/03/2026",
	}

	_, _, err := ValidateCreateRequest(req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := []string{
		"Missing customerId",
		"Invalid loanAmount",
		"Invalid paymentAmount",
		"Invalid interestRate (must be between 0.05 and 1.0)",
		"Invalid createdDate (expected YYYY-MM-DD)",
		"Invalid term or repayAmount",
	}
	if len(vErr.Errors) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(vErr.Errors), vErr.Errors)
	}
	for i, msg := range want {
		if vErr.Errors[i] != msg {
			t.Fatalf("error %d: got %q, want %q", i, vErr.Errors[i], msg)
		}
	}
}

func TestValidateCreateRequestInterestRateBounds(t *testing.T) {
	for _, rate := range []float64{0.05, 0.5, 1.0} {
		req := validRequest()
		req.InterestRate = rate
		if _, _, err := ValidateCreateRequest(req); err != nil {
			t.Fatalf("rate %v should pass: %v", rate, err)
		}
	}
	for _, rate := range []float64{0, 0.049, 1.01} {
		req := validRequest()
		req.InterestRate = rate
		_, _, err := ValidateCreateRequest(req)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("rate %v should fail validation", rate)
		}
	}
}

func TestValidateCreateRequestDueDateFormat(t *testing.T) {
	req := validRequest()
	req.PaymentDueDate = "2026-13-45"
	_, _, err := ValidateCreateRequest(req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatal("out-of-range due date should fail")
	}
	found := false
	for _, msg := range vErr.Errors {
		if strings.Contains(msg, "paymentDueDate") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a paymentDueDate error, got %v", vErr.Errors)
	}
}

func TestValidateCreateRequestFirstRepayDateOverride(t *testing.T) {
	req := validRequest()
	req.FirstRepayDate = "2026-03-15"
	_, firstDue, err := ValidateCreateRequest(req)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if FormatDate(firstDue) != "2026-03-15" {
		t.Fatalf("first due should follow firstRepayDate, got %s", FormatDate(firstDue))
	}
}
