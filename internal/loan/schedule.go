package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidScheduleParams indicates neither the term nor the per-installment
// amount could be resolved from the request.
var ErrInvalidScheduleParams = errors.New("invalid schedule parameters: term or repay amount required")

// ScheduleEntry is one scheduled repayment obligation.
type ScheduleEntry struct {
	DueDate time.Time
	Amount  float64
}

// ResolveScheduleTerms fills in whichever of term / per-installment amount the
// caller omitted. Exactly one may be derived from the other; when neither is
// usable the request is unresolvable.
func ResolveScheduleTerms(totalPayable, repayAmount float64, term int) (int, float64, error) {
	total := decimal.NewFromFloat(totalPayable)

	if (repayAmount <= 0) && term > 0 {
		per := total.Div(decimal.NewFromInt(int64(term))).Round(2)
		repayAmount, _ = per.Float64()
	}

	if term <= 0 && repayAmount > 0 {
		per := decimal.NewFromFloat(repayAmount)
		term = int(total.Div(per).Ceil().IntPart())
	}

	if term <= 0 || repayAmount <= 0 {
		return 0, 0, ErrInvalidScheduleParams
	}

	return term, repayAmount, nil
}

// GenerateSchedule produces term installments starting at firstDue and
// advancing by frequencyDays calendar days. Entries 1..term-1 carry
// repayAmount; the final entry absorbs rounding drift so the schedule sums to
// totalPayable exactly.
func GenerateSchedule(totalPayable float64, term int, repayAmount float64, frequencyDays int, firstDue time.Time) []ScheduleEntry {
	total := decimal.NewFromFloat(totalPayable)
	per := decimal.NewFromFloat(repayAmount)

	entries := make([]ScheduleEntry, 0, term)
	due := firstDue
	for i := 0; i < term; i++ {
		amount := repayAmount
		if i == term-1 {
			rest := total.Sub(per.Mul(decimal.NewFromInt(int64(term - 1)))).Round(2)
			amount, _ = rest.Float64()
		}
		entries = append(entries, ScheduleEntry{DueDate: due, Amount: amount})
		due = due.AddDate(0, 0, frequencyDays)
	}
	return entries
}
