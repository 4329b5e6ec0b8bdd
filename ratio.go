package gamelanizer

// limitDenominator finds the best rational approximation num/den of x with
// den <= maxDenominator, using the standard continued-fraction
// best-rational-approximation algorithm. This reproduces Python's
// fractions.Fraction(x).limit_denominator(maxDenominator), which the
// Gamelanizer prototype uses to turn a pitch_shift_factor**level into the
// resampler's up/down ratio (spec §3: "pitch_num/pitch_den: rational
// approximation of r^l (denominator <= 1000)").
func limitDenominator(x float64, maxDenominator int) (num, den int) {
	if x == 0 {
		return 0, 1
	}
	neg := x < 0
	if neg {
		x = -x
	}

	// p/q convergents of the continued fraction expansion of x.
	p0, q0 := 0, 1
	p1, q1 := 1, 0
	rem := x

	for {
		a := int(rem)
		p2 := a*p1 + p0
		q2 := a*q1 + q0
		if q2 > maxDenominator {
			break
		}
		p0, q0 = p1, q1
		p1, q1 = p2, q2

		frac := rem - float64(a)
		if frac < 1e-12 {
			break
		}
		rem = 1 / frac
	}

	// p1/q1 is the best convergent within the bound; check whether a
	// semiconvergent between p0/q0 and p1/q1 fits the remaining
	// denominator budget and is a closer approximation.
	if q1 == 0 {
		p1, q1 = p0, q0
	} else if q0 > 0 {
		k := (maxDenominator - q0) / q1
		if k > 0 {
			pk := p0 + k*p1
			qk := q0 + k*q1
			if qk <= maxDenominator {
				if closer(x, pk, qk, p1, q1) {
					p1, q1 = pk, qk
				}
			}
		}
	}

	if q1 == 0 {
		q1 = 1
	}
	num, den = p1, q1
	if neg {
		num = -num
	}
	return num, den
}

// closer reports whether pa/qa approximates x at least as closely as
// pb/qb.
func closer(x float64, pa, qa, pb, qb int) bool {
	da := x - float64(pa)/float64(qa)
	db := x - float64(pb)/float64(qb)
	if da < 0 {
		da = -da
	}
	if db < 0 {
		db = -db
	}
	return da <= db
}
