package lagerana

import (
	"testing"
)

func TestPreciseTicks(t *testing.T) {
	ticks := PreciseTicks{NSuggestedTicks: 5}.Ticks(0, 10)

	var labels []string
	for _, tick := range ticks {
		if tick.Value < 0 || tick.Value > 10 {
			t.Fatalf("tick %v out of range", tick.Value)
		}
		if tick.Label != "" {
			labels = append(labels, tick.Label)
		}
	}
	want := []string{"0", "2", "4", "6", "8", "10"}
	if len(labels) != len(want) {
		t.Fatalf("invalid labels: got=%q, want=%q", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("invalid labels: got=%q, want=%q", labels, want)
		}
	}
	if len(ticks) <= len(labels) {
		t.Fatalf("no minor ticks")
	}
}

func TestPreciseTicksEmptyRange(t *testing.T) {
	for _, r := range [][2]float64{{1, 1}, {2, 1}} {
		// must not panic.
		_ = PreciseTicks{}.Ticks(r[0], r[1])
	}
}

func TestRound(t *testing.T) {
	for _, tc := range []struct {
		x    float64
		prec int
		want float64
	}{
		{0.12345, 2, 0.12},
		{-0.125, 2, -0.13},
		{3, 1, 3},
		{0.3000000004, 1, 0.3},
	} {
		if got := round(tc.x, tc.prec); got != tc.want {
			t.Errorf("round(%v, %d): got=%v, want=%v", tc.x, tc.prec, got, tc.want)
		}
	}
}
