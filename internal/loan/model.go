package loan

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the loan number is unknown.
	ErrNotFound = errors.New("loan not found")

	// ErrDuplicate indicates the loan number is already taken and the caller
	// did not ask for a replace.
	ErrDuplicate = errors.New("loan number already exists")

	// ErrScheduleMissing indicates the loan row exists but its repayment
	// schedule was never persisted. The loan is repairable, not lost.
	ErrScheduleMissing = errors.New("loan created but repayment schedule missing")

	// ErrScheduleExists rejects a repair for a loan that already has a schedule.
	ErrScheduleExists = errors.New("repayment schedule already present")

	// ErrClientMismatch indicates the loan number and client id do not
	// identify the same loan.
	ErrClientMismatch = errors.New("loan number and client id do not match")
)

// Loan captures the agreed terms of a single loan contract.
type Loan struct {
	LoanNumber       string            `json:"loan_number"`
	CustomerID       int64             `json:"customer_id"`
	CustomerName     string            `json:"customer_name"`
	Currency         string            `json:"currency"`
	LoanAmount       float64           `json:"loan_amount"`
	InterestRate     float64           `json:"interest_rate"`
	InterestAmount   float64           `json:"interest_amount"`
	PaymentFrequency int               `json:"payment_frequency"`
	PaymentAmount    float64           `json:"payment_amount"`
	Term             int               `json:"term"`
	RepayAmount      float64           `json:"repay_amount"`
	CreatedDate      time.Time         `json:"created_date"`
	PaymentDueDate   *time.Time        `json:"payment_due_date,omitempty"`
	ContractSigned   bool              `json:"contract_signed"`
	SignedPhoto      string            `json:"signed_photo,omitempty"`
	LenderName       string            `json:"lender_name,omitempty"`
	Audit            map[string]string `json:"audit,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Record is the per-client loan summary row returned by the records listing.
type Record struct {
	LoanNumber     string     `json:"loan_number"`
	LoanAmount     float64    `json:"loan_amount"`
	InterestAmount float64    `json:"interest_amount"`
	CreatedDate    time.Time  `json:"created_date"`
	PaymentDueDate *time.Time `json:"payment_due_date,omitempty"`
	LenderName     string     `json:"lender_name,omitempty"`
}

// CustomerInfo is the contract-signing view of a loan.
type CustomerInfo struct {
	LoanNumber     string `json:"loanNumber"`
	CustomerID     int64  `json:"customerId"`
	CustomerName   string `json:"customerName"`
	SignedPhoto    string `json:"signedPhoto"`
	ContractSigned bool   `json:"contractSigned"`
}
