package utils

import "testing"

func TestMinInt(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{1, 2, 1},
		{2, 1, 1},
		{3, 3, 3},
		{-4, 0, -4},
	}
	for _, tt := range tests {
		if got := MinInt(tt.a, tt.b); got != tt.want {
			t.Errorf("MinInt(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		val       float64
		precision uint
		want      float64
	}{
		{13.7499, 2, 13.75},
		{13.744, 2, 13.74},
		{-13.746, 2, -13.75},
		{50, 2, 50},
		{2.5, 0, 3},
	}
	for _, tt := range tests {
		if got := RoundFloat(tt.val, tt.precision); got != tt.want {
			t.Errorf("RoundFloat(%v, %d) = %v, want %v", tt.val, tt.precision, got, tt.want)
		}
	}
}
