// Package ring provides the two circular buffers the engine drives
// sample-by-sample: a fixed-lag delay line for the dry signal, and a
// multi-channel (one channel per subdivision level) accumulation ring for
// the wet lanes. Both are grounded on the teacher's internal/comb package:
// a fixed-capacity buffer fed and drained incrementally, with modular
// index arithmetic instead of a head/tail-pointer deque.
package ring

// DelayLine is a fixed-capacity circular buffer that reproduces its input
// D samples later, where D is set once via SetLag. It models the dry
// signal path's delay_line (spec §3, §4.4).
type DelayLine struct {
	buf      []float32
	writePos uint64
	readPos  uint64
}

// NewDelayLine allocates a delay line with the given capacity. capacity
// must be at least the largest lag that will ever be configured via
// SetLag.
func NewDelayLine(capacity int) *DelayLine {
	return &DelayLine{buf: make([]float32, capacity)}
}

// SetLag positions the read cursor d samples behind the current write
// cursor, wrapping modulo capacity. Call this once, at engine
// initialization.
func (d *DelayLine) SetLag(lag uint64) {
	cap64 := uint64(len(d.buf))
	d.readPos = (d.writePos + cap64 - (lag % cap64)) % cap64
}

// Push stores x at the write cursor.
func (d *DelayLine) Push(x float32) {
	d.buf[d.writePos] = x
}

// Read returns the value currently under the read cursor, D samples
// behind the write cursor.
func (d *DelayLine) Read() float32 {
	return d.buf[d.readPos]
}

// Advance moves both cursors forward by one sample, wrapping at capacity.
// Call once per processed sample, after Push and Read.
func (d *DelayLine) Advance() {
	d.writePos++
	if d.writePos == uint64(len(d.buf)) {
		d.writePos = 0
	}
	d.readPos++
	if d.readPos == uint64(len(d.buf)) {
		d.readPos = 0
	}
}

// Len reports the delay line's capacity.
func (d *DelayLine) Len() int {
	return len(d.buf)
}

// LaneRing is the multi-channel output ring buffer out_buf: one channel
// per subdivision level, splatted into by overlapping synthesis frames and
// drained one sample at a time by the engine's output mix step.
type LaneRing struct {
	channels [][]float32 // [level][position]
	readPos  uint64
}

// NewLaneRing allocates a ring with the given number of channels
// (subdivision levels) and per-channel capacity.
func NewLaneRing(levels, capacity int) *LaneRing {
	r := &LaneRing{channels: make([][]float32, levels)}
	for l := range r.channels {
		r.channels[l] = make([]float32, capacity)
	}
	return r
}

// Splat accumulates frame into channel level starting at absolute
// position head, wrapping modulo capacity. head may be arbitrarily large
// or negative; it is always reduced modulo capacity first.
func (r *LaneRing) Splat(level int, head int64, frame []float32) {
	ch := r.channels[level]
	n := int64(len(ch))
	pos := head % n
	if pos < 0 {
		pos += n
	}
	for _, v := range frame {
		ch[pos] += v
		pos++
		if pos == n {
			pos = 0
		}
	}
}

// ReadAndClear sums every channel's value at the current read position,
// zeroes that slot in every channel so future wrap-around splats start
// from silence, then advances the read cursor. This implements design
// note §9's "(a) zero on read" resolution to the write/read race.
func (r *LaneRing) ReadAndClear() float32 {
	var sum float32
	for _, ch := range r.channels {
		sum += ch[r.readPos]
		ch[r.readPos] = 0
	}
	r.readPos++
	if len(r.channels) > 0 && r.readPos == uint64(len(r.channels[0])) {
		r.readPos = 0
	}
	return sum
}

// Len reports the per-channel capacity.
func (r *LaneRing) Len() int {
	if len(r.channels) == 0 {
		return 0
	}
	return len(r.channels[0])
}
