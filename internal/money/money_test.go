package money

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.005, 1.0},
		{1.015, 1.01},
		{33.333333, 33.33},
		{33.336, 33.34},
		{-33.333333, -33.33},
		{10.004999, 10.0},
		{99.999, 100},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		in   float64
		want bool
	}{
		{0, true},
		{0.009, true},
		{-0.009, true},
		{0.01, false},
		{-0.01, false},
		{5, false},
	}

	for _, tt := range tests {
		if got := IsZero(tt.in); got != tt.want {
			t.Errorf("IsZero(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
