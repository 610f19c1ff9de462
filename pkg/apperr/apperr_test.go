package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantOK   bool
	}{
		{name: "validation", err: Validation("bad input"), wantKind: KindValidation, wantOK: true},
		{name: "not found", err: NotFound("user %d missing", 7), wantKind: KindNotFound, wantOK: true},
		{name: "constraint", err: Constraint("overpayment"), wantKind: KindConstraint, wantOK: true},
		{name: "concurrency", err: Concurrency("conflict"), wantKind: KindConcurrency, wantOK: true},
		{name: "plain error", err: errors.New("boom"), wantOK: false},
		{name: "wrapped", err: fmt.Errorf("settle: %w", Constraint("overpayment")), wantKind: KindConstraint, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("KindOf ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", kind, tt.wantKind)
			}
		})
	}
}

func TestMessageFormatting(t *testing.T) {
	err := NotFound("user %d missing", 7)
	if err.Error() != "user 7 missing" {
		t.Errorf("message = %q, want %q", err.Error(), "user 7 missing")
	}
}

func TestSentinelComparison(t *testing.T) {
	sentinel := NotFound("group not found")

	if !errors.Is(fmt.Errorf("lookup: %w", sentinel), sentinel) {
		t.Error("wrapped sentinel not matched by errors.Is")
	}
	if errors.Is(NotFound("group not found"), sentinel) {
		t.Error("distinct errors with equal messages must not match")
	}
}

func TestIsKind(t *testing.T) {
	if !IsKind(Validation("x"), KindValidation) {
		t.Error("IsKind failed on direct error")
	}
	if IsKind(Validation("x"), KindConstraint) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(nil, KindValidation) {
		t.Error("IsKind matched nil")
	}
}
