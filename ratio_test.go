package gamelanizer

import (
	"math"
	"testing"
)

func TestLimitDenominatorExactRatios(t *testing.T) {
	cases := []struct {
		x            float64
		wantNum      int
		wantDen      int
		maxDenom     int
	}{
		{4.0 / 3.0, 4, 3, 1000},
		{1.0, 1, 1, 1000},
		{0.5, 1, 2, 1000},
	}
	for _, c := range cases {
		num, den := limitDenominator(c.x, c.maxDenom)
		if num != c.wantNum || den != c.wantDen {
			t.Errorf("limitDenominator(%v, %d) = %d/%d, want %d/%d", c.x, c.maxDenom, num, den, c.wantNum, c.wantDen)
		}
	}
}

func TestLimitDenominatorRespectsBound(t *testing.T) {
	num, den := limitDenominator(math.Pi, 1000)
	if den > 1000 {
		t.Fatalf("den = %d, exceeds bound of 1000", den)
	}
	approx := float64(num) / float64(den)
	if math.Abs(approx-math.Pi) > 1e-3 {
		t.Errorf("approximation %v too far from pi", approx)
	}
}

func TestLimitDenominatorPowersOfFourThirds(t *testing.T) {
	r := 4.0 / 3.0
	for level := 1; level <= 4; level++ {
		x := math.Pow(r, float64(level))
		num, den := limitDenominator(x, 1000)
		if den > 1000 || den <= 0 {
			t.Fatalf("level %d: den = %d out of bounds", level, den)
		}
		approx := float64(num) / float64(den)
		if math.Abs(approx-x) > 1e-4 {
			t.Errorf("level %d: approx %v too far from %v", level, approx, x)
		}
	}
}
