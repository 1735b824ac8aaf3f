package format

import (
	"testing"

	"polyterm/internal/domain"
)

func TestVolume(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2_400_000_000, "$2.4B"},
		{1_234_567, "$1.2M"},
		{45_300, "$45.3K"},
		{1000, "$1.0K"},
		{850, "$850"},
		{0, "$0"},
	}
	for _, tc := range cases {
		if got := Volume(domain.Volume(tc.in)); got != tc.want {
			t.Errorf("Volume(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProbability(t *testing.T) {
	if got := Probability(0.42); got != "42.0%" {
		t.Errorf("Probability(0.42) = %q, want 42.0%%", got)
	}
	if got := Probability(1); got != "100.0%" {
		t.Errorf("Probability(1) = %q, want 100.0%%", got)
	}
}

func TestEndDate(t *testing.T) {
	if got := EndDate("2026-11-03T00:00:00Z"); got != "Nov 3, 2026" {
		t.Errorf("EndDate = %q, want Nov 3, 2026", got)
	}
	if got := EndDate(""); got != "-" {
		t.Errorf("EndDate(\"\") = %q, want -", got)
	}
	if got := EndDate("yesterday"); got != "-" {
		t.Errorf("EndDate(garbage) = %q, want -", got)
	}
}

func TestEndDateMillis(t *testing.T) {
	// 2026-01-03T00:00:00Z
	if got := EndDateMillis(1767398400000); got != "Jan 3, 2026" {
		t.Errorf("EndDateMillis = %q, want Jan 3, 2026", got)
	}
	if got := EndDateMillis(0); got != "-" {
		t.Errorf("EndDateMillis(0) = %q, want -", got)
	}
}
