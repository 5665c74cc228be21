package repay

import "time"

// Installment status values. An installment is paid once the sum of its
// payments covers the scheduled amount, partial once anything positive has
// been received, and pending otherwise.
const (
	StatusPending = "pending"
	StatusPartial = "partial"
	StatusPaid    = "paid"
)

// Installment is one scheduled repayment of a loan.
type Installment struct {
	ID            int64      `json:"repayId"`
	LoanNumber    string     `json:"loanNumber"`
	ClientID      int64      `json:"clientId"`
	DueDate       time.Time  `json:"dueDate"`
	Amount        float64    `json:"repayAmount"`
	PaidAmount    float64    `json:"paidAmount"`
	LateFee       float64    `json:"lateFee"`
	Status        string     `json:"status"`
	LastPaidDate  *time.Time `json:"lastPaidDate,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	ReceiptNo     string     `json:"receiptNo,omitempty"`
	Remark        string     `json:"remark,omitempty"`
	CreateDate    time.Time  `json:"createDate"`
}

// Payment is one append-only ledger row recorded against an installment.
type Payment struct {
	ID            string    `json:"paymentId"`
	InstallmentID int64     `json:"repayId"`
	LoanNumber    string    `json:"loanNumber"`
	ClientID      int64     `json:"clientId"`
	Amount        float64   `json:"amount"`
	LateFee       float64   `json:"lateFee"`
	PaidDate      time.Time `json:"paidDate"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	ReceiptNo     string    `json:"receiptNo,omitempty"`
	Remark        string    `json:"remark,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PaymentInput carries one incoming payment to reconcile.
type PaymentInput struct {
	InstallmentID   int64     `json:"repayId"`
	LoanNumber      string    `json:"loanNumber"`
	ClientID        int64     `json:"clientId"`
	Amount          float64   `json:"amount"`
	PaidDate        time.Time `json:"paidDate"`
	PaymentMethod   string    `json:"paymentMethod"`
	ReceiptNo       string    `json:"receiptNo"`
	Remark          string    `json:"remark"`
	OverrideLateFee bool      `json:"overrideLateFee"`
	LateFee         float64   `json:"lateFee"`
}

// Summary reports the installment state after a payment has been applied.
type Summary struct {
	PaymentID      string      `json:"paymentId"`
	InstallmentID  int64       `json:"repayId"`
	TotalPaid      float64     `json:"totalPaid"`
	Remaining      float64     `json:"remaining"`
	LateFeeCharged float64     `json:"lateFeeCharged"`
	LateFeeTotal   float64     `json:"lateFeeTotal"`
	Status         string      `json:"status"`
	Installment    Installment `json:"installment"`
}

// ScheduleItem is the shape loan creation hands over when installment rows
// are generated from an amortization schedule.
type ScheduleItem struct {
	DueDate time.Time
	Amount  float64
}
