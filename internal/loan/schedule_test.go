package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestGenerateScheduleSumsExactly(t *testing.T) {
	cases := []struct {
		name    string
		total   float64
		term    int
		per     float64
		amounts []float64
	}{
		{"even split", 300, 3, 100, []float64{100, 100, 100}},
		{"rounding drift absorbed", 100, 3, 33.33, []float64{33.33, 33.33, 33.34}},
		{"final smaller than regular", 100, 3, 40, []float64{40, 40, 20}},
		{"single installment", 250.5, 1, 250.5, []float64{250.5}},
	}

	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries := GenerateSchedule(tc.total, tc.term, tc.per, 7, start)
			if len(entries) != tc.term {
				t.Fatalf("expected %d entries, got %d", tc.term, len(entries))
			}

			sum := decimal.Zero
			for i, e := range entries {
				if e.Amount != tc.amounts[i] {
					t.Fatalf("entry %d: expected %v, got %v", i, tc.amounts[i], e.Amount)
				}
				sum = sum.Add(decimal.NewFromFloat(e.Amount))
			}
			if !sum.Equal(decimal.NewFromFloat(tc.total)) {
				t.Fatalf("schedule sums to %s, want %v", sum, tc.total)
			}
		})
	}
}

func TestGenerateScheduleStepsCalendarDays(t *testing.T) {
	start := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)
	entries := GenerateSchedule(400, 4, 100, 7, start)

	want := []string{"2026-01-28", "2026-02-04", "2026-02-11", "2026-02-18"}
	for i, e := range entries {
		if got := FormatDate(e.DueDate); got != want[i] {
			t.Fatalf("entry %d due %s, want %s", i, got, want[i])
		}
	}
}

func TestResolveScheduleTerms(t *testing.T) {
	term, per, err := ResolveScheduleTerms(100, 0, 4)
	if err != nil || term != 4 || per != 25 {
		t.Fatalf("derive per: got term=%d per=%v err=%v", term, per, err)
	}

	term, per, err = ResolveScheduleTerms(100, 30, 0)
	if err != nil || term != 4 || per != 30 {
		t.Fatalf("derive term via ceiling: got term=%d per=%v err=%v", term, per, err)
	}

	if _, _, err := ResolveScheduleTerms(100, 0, 0); err == nil {
		t.Fatal("expected error when neither term nor repayAmount is usable")
	}
}
