package loan

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

const defaultFrequencyDays = 7

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CreateRequest is the raw loan-creation payload before validation.
type CreateRequest struct {
	LoanNumber       string            `json:"loanNumber"`
	CustomerID       int64             `json:"customerId"`
	CustomerName     string            `json:"customerName"`
	Currency         string            `json:"currency"`
	LoanAmount       float64           `json:"loanAmount"`
	InterestRate     float64           `json:"interestRate"`
	InterestAmount   float64           `json:"interestAmount"`
	PaymentFrequency int               `json:"paymentFrequency"`
	PaymentAmount    float64           `json:"paymentAmount"`
	Term             int               `json:"term"`
	RepayAmount      float64           `json:"repayAmount"`
	CreatedDate      string            `json:"createdDate"`
	PaymentDueDate   string            `json:"paymentDueDate"`
	FirstRepayDate   string            `json:"firstRepayDate"`
	LenderName       string            `json:"lenderName"`
	ForceReplace     bool              `json:"forceReplace"`
	Audit            map[string]string `json:"audit"`
}

// ValidationError carries every field-level violation found in a request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// ValidateCreateRequest checks every rule and collects all violations so the
// caller sees the full list at once. On success it returns the normalized
// loan and the first repayment due date.
func ValidateCreateRequest(req CreateRequest) (Loan, time.Time, error) {
	var errs []string

	if req.CustomerID <= 0 {
		errs = append(errs, "Missing customerId")
	}
	if req.LoanAmount <= 0 {
		errs = append(errs, "Invalid loanAmount")
	}
	if req.PaymentAmount <= 0 {
		errs = append(errs, "Invalid paymentAmount")
	}
	if req.InterestRate < 0.05 || req.InterestRate > 1.0 {
		errs = append(errs, "Invalid interestRate (must be between 0.05 and 1.0)")
	}

	createdDate, ok := parseDate(req.CreatedDate)
	if !ok {
		errs = append(errs, "Invalid createdDate (expected YYYY-MM-DD)")
	}

	var dueDate *time.Time
	if req.PaymentDueDate != "" {
		d, ok := parseDate(req.PaymentDueDate)
		if !ok {
			errs = append(errs, "Invalid paymentDueDate (expected YYYY-MM-DD)")
		} else {
			dueDate = &d
		}
	}

	frequencyDays := req.PaymentFrequency
	if frequencyDays <= 0 {
		frequencyDays = defaultFrequencyDays
	}

	term, repayAmount, err := ResolveScheduleTerms(req.PaymentAmount, req.RepayAmount, req.Term)
	if err != nil {
		errs = append(errs, "Invalid term or repayAmount")
	}

	if len(errs) > 0 {
		return Loan{}, time.Time{}, &ValidationError{Errors: errs}
	}

	firstDue := createdDate
	if req.FirstRepayDate != "" {
		if d, ok := parseDate(req.FirstRepayDate); ok {
			firstDue = d
		}
	}

	ln := Loan{
		LoanNumber:       strings.TrimSpace(req.LoanNumber),
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		Currency:         req.Currency,
		LoanAmount:       req.LoanAmount,
		InterestRate:     req.InterestRate,
		InterestAmount:   req.InterestAmount,
		PaymentFrequency: frequencyDays,
		PaymentAmount:    req.PaymentAmount,
		Term:             term,
		RepayAmount:      repayAmount,
		CreatedDate:      createdDate,
		PaymentDueDate:   dueDate,
		LenderName:       req.LenderName,
		Audit:            req.Audit,
	}

	return ln, firstDue, nil
}

func parseDate(s string) (time.Time, bool) {
	if !dateFormat.MatchString(s) {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FormatDate renders a date the way the API speaks them.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
