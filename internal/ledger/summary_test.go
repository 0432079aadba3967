package ledger

import (
	"errors"
	"testing"
	"time"
)

func TestParseYearMonth(t *testing.T) {
	window, err := ParseYearMonth("2026-02")
	if err != nil {
		t.Fatalf("ParseYearMonth() error = %v", err)
	}

	wantStart := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !window.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", window.Start, wantStart)
	}
	if !window.End.Before(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v, should fall before March 1st", window.End)
	}
	if window.End.Day() != 28 {
		t.Errorf("End day = %d, want 28 for February 2026", window.End.Day())
	}
}

func TestParseYearMonthInvalid(t *testing.T) {
	for _, input := range []string{"", "2026", "2026-13", "02-2026", "2026/02", "garbage"} {
		if _, err := ParseYearMonth(input); !errors.Is(err, ErrInvalidYearMonth) {
			t.Errorf("ParseYearMonth(%q): got %v, want ErrInvalidYearMonth", input, err)
		}
	}
}

func TestSummarize(t *testing.T) {
	expenses := []ExpenseForSummary{
		{PaidBy: "alice", Amount: d("25.50")},
		{PaidBy: "bob", Amount: d("10.00")},
		{PaidBy: "alice", Amount: d("4.50")},
	}

	total, contributions := Summarize(expenses)
	if !total.Equal(d("40.00")) {
		t.Errorf("total = %s, want 40.00", total)
	}
	if len(contributions) != 2 {
		t.Fatalf("got %d contributions, want 2", len(contributions))
	}
	if contributions[0].UserID != "alice" || !contributions[0].Total.Equal(d("30.00")) {
		t.Errorf("first contribution = %+v, want alice with 30.00", contributions[0])
	}
	if contributions[1].UserID != "bob" || !contributions[1].Total.Equal(d("10.00")) {
		t.Errorf("second contribution = %+v, want bob with 10.00", contributions[1])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	total, contributions := Summarize(nil)
	if !total.IsZero() {
		t.Errorf("total = %s, want 0", total)
	}
	if len(contributions) != 0 {
		t.Errorf("got %d contributions, want none", len(contributions))
	}
}
