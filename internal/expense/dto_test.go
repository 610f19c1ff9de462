package expense

import (
	"testing"
	"time"
)

func TestToResponseTimestampInUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	e := &Expense{
		ID:          1,
		GroupID:     1,
		PayerID:     2,
		Description: "dinner",
		Amount:      90,
		SplitType:   "equal",
		CreatedAt:   time.Date(2025, 6, 1, 14, 30, 0, 0, loc),
	}

	resp := e.ToResponse()
	if resp.CreatedAt != "2025-06-01T12:30:00Z" {
		t.Errorf("created_at = %q, want %q", resp.CreatedAt, "2025-06-01T12:30:00Z")
	}
}
