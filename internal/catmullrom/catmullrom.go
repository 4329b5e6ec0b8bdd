// Package catmullrom implements a fractional-rate resampler with a 5-sample
// history and a sub-sample phase accumulator, ported from the Catmull-Rom
// interpolator used by JUCE (and, before that, the Gamelanizer Python
// prototype's CatmullRomInterpolator).
package catmullrom

// Interpolator resamples a stream of float32 samples by an arbitrary,
// possibly-fractional ratio. It is not safe for concurrent use.
type Interpolator struct {
	last5        [5]float32
	subSamplePos float64
}

// New returns an Interpolator in its reset state: subSamplePos = 1.0, history
// all zero.
func New() *Interpolator {
	i := &Interpolator{}
	i.Reset()
	return i
}

// Reset returns the interpolator to its initial state.
func (i *Interpolator) Reset() {
	i.subSamplePos = 1.0
	i.last5 = [5]float32{}
}

// Process emits exactly len(output) samples into output, consuming as many
// leading samples of input as needed, and returns the number of input
// samples consumed. actualRatio is input-samples-per-output-sample and must
// be > 0. Fractional phase is carried across calls.
func (i *Interpolator) Process(actualRatio float64, input, output []float32) (numUsed int) {
	numOut := len(output)
	if numOut == 0 {
		return 0
	}

	pos := i.subSamplePos
	if actualRatio == 1.0 && pos == 1.0 {
		copy(output, input[:numOut])
		i.pushHistory(input[:numOut])
		return numOut
	}

	for n := 0; n < numOut; n++ {
		for pos >= 1.0 {
			i.push(input[numUsed])
			numUsed++
			pos -= 1.0
		}
		output[n] = valueAtOffset(&i.last5, pos)
		pos += actualRatio
	}

	i.subSamplePos = pos
	return numUsed
}

// push shifts a new sample onto the front of the history, discarding the
// oldest.
func (i *Interpolator) push(v float32) {
	i.last5[4] = i.last5[3]
	i.last5[3] = i.last5[2]
	i.last5[2] = i.last5[1]
	i.last5[1] = i.last5[0]
	i.last5[0] = v
}

// pushHistory replays the fast-copy path's bulk history update: the last up
// to 5 samples of in, most recent first.
func (i *Interpolator) pushHistory(in []float32) {
	if len(in) >= 5 {
		n := len(in)
		for k := 0; k < 5; k++ {
			n--
			i.last5[k] = in[n]
		}
		return
	}
	for _, v := range in {
		i.push(v)
	}
}

// valueAtOffset evaluates the 4-point Catmull-Rom kernel over the history at
// fractional offset t in [0, 1).
func valueAtOffset(last5 *[5]float32, t float64) float32 {
	y0, y1, y2, y3 := last5[3], last5[2], last5[1], last5[0]
	tf := float32(t)

	halfY0 := 0.5 * y0
	halfY3 := 0.5 * y3

	return y1 + tf*((0.5*y2-halfY0)+
		tf*(((y0+2.0*y2)-(halfY3+2.5*y1))+
			tf*((halfY3+1.5*y1)-(halfY0+1.5*y2))))
}
