package ring

import "testing"

func TestDelayLineReproducesAfterLag(t *testing.T) {
	const lag = 5
	dl := NewDelayLine(16)
	dl.SetLag(lag)

	in := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	var out []float32
	for _, x := range in {
		dl.Push(x)
		out = append(out, dl.Read())
		dl.Advance()
	}

	for i := lag; i < len(in); i++ {
		want := in[i-lag]
		if out[i] != want {
			t.Errorf("out[%d] = %v, want %v (delayed by %d)", i, out[i], want, lag)
		}
	}
	for i := 0; i < lag; i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %v, want 0 before the delay has elapsed", i, out[i])
		}
	}
}

func TestDelayLineWrapsAtCapacity(t *testing.T) {
	dl := NewDelayLine(4)
	dl.SetLag(2)

	var out []float32
	for i := 0; i < 12; i++ {
		dl.Push(float32(i + 1))
		out = append(out, dl.Read())
		dl.Advance()
	}

	for i := 2; i < len(out); i++ {
		want := float32(i - 2 + 1)
		if out[i] != want {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestLaneRingSplatAndRead(t *testing.T) {
	r := NewLaneRing(2, 8)

	r.Splat(0, 0, []float32{1, 1, 1})
	r.Splat(1, 2, []float32{10, 10})

	var got []float32
	for i := 0; i < 8; i++ {
		got = append(got, r.ReadAndClear())
	}

	want := []float32{1, 1, 11, 10, 0, 0, 0, 0}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("position %d = %v, want %v", i, got[i], w)
		}
	}
}

func TestLaneRingZeroesOnRead(t *testing.T) {
	r := NewLaneRing(1, 4)
	r.Splat(0, 0, []float32{5})

	first := r.ReadAndClear()
	if first != 5 {
		t.Fatalf("first read = %v, want 5", first)
	}

	// Wrap around fully; the slot we already read must stay at zero until
	// splatted again.
	for i := 0; i < 4; i++ {
		r.ReadAndClear()
	}
	r.Splat(0, 1, []float32{0}) // no-op splat elsewhere
	v := r.channels[0][0]
	if v != 0 {
		t.Errorf("slot 0 should remain zero after being read, got %v", v)
	}
}

func TestLaneRingNegativeHeadWraps(t *testing.T) {
	r := NewLaneRing(1, 8)
	r.Splat(0, -3, []float32{9})
	if r.channels[0][5] != 9 {
		t.Errorf("negative head did not wrap correctly, got channel = %v", r.channels[0])
	}
}
