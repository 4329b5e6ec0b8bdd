// Package vocoder implements one phase-vocoder lane of a subdivision level:
// a resampling input queue, an analysis/synthesis STFT with phase
// propagation, and the amplitude compensation that makes overlap-add
// reconstruction unity-gain for a Hann window. Ported from the Gamelanizer
// Python prototype's PhaseVocoderFrameBased, using
// github.com/cwbudde/algo-fft for the real FFT in place of numpy's
// rfft/irfft.
package vocoder

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/lukemcraig/gamelanizer/internal/catmullrom"
)

// defaultQueueCapacity matches the Python prototype's resampler_queue
// default of 8192, "sufficient for W<=4096 and r near 4/3" (spec §6).
const defaultQueueCapacity = 8192

// Config is the immutable, construction-time configuration of one lane.
type Config struct {
	AnalysisWindowSize   int // W, power of two
	AnalysisOverlapFactor int // OA, >= 2
	PitchNum             int // rational approximation numerator of r^l
	PitchDen             int // rational approximation denominator, <= 1000
	Power                int // 2^l time-compression factor for this level
}

// fftPlan is the slice of github.com/cwbudde/algo-fft's real-FFT plan
// surface this lane needs: a forward real transform producing W/2+1
// complex bins, and an inverse that reconstructs W real samples
// (algo-fft's inverse includes the 1/W normalization).
type fftPlan interface {
	Forward(dst []complex128, src []float64) error
	Inverse(dst []float64, src []complex128) error
}

// Lane is one PhaseVocoderLane (spec §4.2). It is not safe for concurrent
// use.
type Lane struct {
	cfg Config

	ha      int // analysis hop size
	nBins   int
	hs      float64 // synthesis hop size, fractional
	ampComp float64

	maxNeed int // max_need_samples(HA)

	interp *catmullrom.Interpolator
	plan   fftPlan

	resamplerQueue []float32
	resamplerWrite int

	analysisHop []float32

	fftRing      []float32
	fftHead      int
	fftRingReady bool

	fftTime []float64
	fftFreq []complex128

	analysisPhasePrev  []float64
	synthesisPhasePrev []float64
	ready              bool

	// synthFrame holds the windowed, amplitude-compensated synthesis frame
	// produced by the most recent PushSample call that returned a non-zero
	// hop. It is owned by the lane and overwritten on the next frame.
	synthFrame []float32

	// bypassPhasePropagation disables analysis/synthesis phase tracking
	// entirely (ready forced true, synthesis phase mirrors analysis phase
	// every frame), for checking the overlap-add reconstruction identity
	// (I5). Set only through SetBypassPhasePropagation; production lanes
	// leave this false.
	bypassPhasePropagation bool
}

// New constructs a lane for the given configuration. W must be a power of
// two and OA must divide it.
func New(cfg Config) (*Lane, error) {
	if cfg.AnalysisWindowSize <= 0 || cfg.AnalysisWindowSize&(cfg.AnalysisWindowSize-1) != 0 {
		return nil, fmt.Errorf("vocoder: analysis window size %d is not a power of two", cfg.AnalysisWindowSize)
	}
	if cfg.AnalysisOverlapFactor < 2 {
		return nil, fmt.Errorf("vocoder: analysis overlap factor %d must be >= 2", cfg.AnalysisOverlapFactor)
	}
	if cfg.AnalysisWindowSize%cfg.AnalysisOverlapFactor != 0 {
		return nil, fmt.Errorf("vocoder: window size %d not divisible by overlap factor %d", cfg.AnalysisWindowSize, cfg.AnalysisOverlapFactor)
	}
	if cfg.PitchNum <= 0 || cfg.PitchDen <= 0 {
		return nil, fmt.Errorf("vocoder: pitch ratio %d/%d must be positive", cfg.PitchNum, cfg.PitchDen)
	}
	if cfg.Power <= 0 {
		return nil, fmt.Errorf("vocoder: power %d must be positive", cfg.Power)
	}

	plan, err := algofft.NewPlanReal64(cfg.AnalysisWindowSize)
	if err != nil {
		return nil, fmt.Errorf("vocoder: fft plan: %w", err)
	}

	w := cfg.AnalysisWindowSize
	ha := w / cfg.AnalysisOverlapFactor
	nBins := w/2 + 1

	timeScale := (float64(cfg.PitchNum) / float64(cfg.PitchDen)) / float64(cfg.Power)
	hs := float64(ha) * timeScale

	maxNeed := maxNeedSamples(ha, cfg.PitchNum, cfg.PitchDen)
	queueCap := defaultQueueCapacity
	if maxNeed+1 > queueCap {
		queueCap = maxNeed + 1
	}

	l := &Lane{
		cfg:     cfg,
		ha:      ha,
		nBins:   nBins,
		hs:      hs,
		ampComp: hs / (float64(w) * 0.375),
		maxNeed: maxNeed,

		interp: catmullrom.New(),
		plan:   plan,

		resamplerQueue: make([]float32, queueCap),
		analysisHop:    make([]float32, ha),

		fftRing: make([]float32, w),

		fftTime: make([]float64, w),
		fftFreq: make([]complex128, nBins),

		analysisPhasePrev:  make([]float64, nBins),
		synthesisPhasePrev: make([]float64, nBins),

		synthFrame: make([]float32, w),
	}
	return l, nil
}

// maxNeedSamples returns floor(k * pitchNum / pitchDen), the number of
// resampler input samples guaranteed to produce k output samples, using
// the same actual_ratio = pitch_num/pitch_den convention as step 2 and I3
// (the original source's calculate_maximum_needed_num_samples).
func maxNeedSamples(k, pitchNum, pitchDen int) int {
	return int(math.Floor(float64(k) * float64(pitchNum) / float64(pitchDen)))
}

// Frame returns the most recently produced synthesis frame, valid only
// immediately after a PushSample call that returned hop > 0.
func (l *Lane) Frame() []float32 {
	return l.synthFrame
}

// PushSample feeds one input sample through the resampler and STFT
// pipeline. It returns the integer synthesis hop size when a new frame was
// produced (0 otherwise); see spec §4.2.
func (l *Lane) PushSample(x float32) int {
	l.resamplerQueue[l.resamplerWrite] = x
	l.resamplerWrite++
	if l.resamplerWrite < l.maxNeed+1 {
		return 0
	}

	ratio := float64(l.cfg.PitchNum) / float64(l.cfg.PitchDen)
	numUsed := l.interp.Process(ratio, l.resamplerQueue[:l.resamplerWrite], l.analysisHop)
	l.popUsed(numUsed)

	l.pushAnalysisHop()
	if !l.fftRingReady {
		return 0
	}

	l.synthesizeFrame()
	return int(math.Floor(l.hs))
}

// popUsed compacts the resampler queue, discarding the first numUsed
// samples.
func (l *Lane) popUsed(numUsed int) {
	remaining := l.resamplerWrite - numUsed
	copy(l.resamplerQueue[:remaining], l.resamplerQueue[numUsed:l.resamplerWrite])
	l.resamplerWrite = remaining
}

// pushAnalysisHop writes the HA freshly-resampled samples into the
// circular FFT input ring, marking it ready once a full window has ever
// been filled.
func (l *Lane) pushAnalysisHop() {
	w := len(l.fftRing)
	for _, v := range l.analysisHop {
		l.fftRing[l.fftHead] = v
		l.fftHead++
		if l.fftHead == w {
			l.fftRingReady = true
			l.fftHead = 0
		}
	}
}

// synthesizeFrame runs one full analysis -> phase propagation -> synthesis
// pass and leaves the result in synthFrame.
func (l *Lane) synthesizeFrame() {
	w := len(l.fftRing)

	// Unwrap the ring so index 0 is oldest.
	for i := 0; i < w; i++ {
		idx := (l.fftHead + i) % w
		l.fftTime[i] = float64(l.fftRing[idx]) * hannAt(i, w)
	}

	if err := l.plan.Forward(l.fftFreq, l.fftTime); err != nil {
		// The plan was validated at construction; a forward-transform
		// failure here means corrupted internal state.
		panic(fmt.Sprintf("vocoder: forward fft: %v", err))
	}

	l.propagatePhase()

	if err := l.plan.Inverse(l.fftTime, l.fftFreq); err != nil {
		panic(fmt.Sprintf("vocoder: inverse fft: %v", err))
	}

	for i := 0; i < w; i++ {
		l.synthFrame[i] = float32(l.fftTime[i] * hannAt(i, w) * l.ampComp)
	}
}

// propagatePhase implements spec §4.2's per-bin phase propagation,
// mutating fftFreq in place so magnitudes are preserved and phases follow
// the tracked instantaneous frequency.
func (l *Lane) propagatePhase() {
	oa := float64(l.cfg.AnalysisOverlapFactor)
	ha := float64(l.ha)
	w := float64(len(l.fftRing))
	os := oa / ((float64(l.cfg.PitchNum) / float64(l.cfg.PitchDen)) / float64(l.cfg.Power))

	if l.bypassPhasePropagation {
		for k, bin := range l.fftFreq {
			mag, phi := cmplx.Abs(bin), cmplx.Phase(bin)
			l.analysisPhasePrev[k] = phi
			l.synthesisPhasePrev[k] = phi
			l.fftFreq[k] = cmplx.Rect(mag, phi)
		}
		l.ready = true
		return
	}

	if !l.ready {
		for k, bin := range l.fftFreq {
			phi := cmplx.Phase(bin)
			l.analysisPhasePrev[k] = phi
			l.synthesisPhasePrev[k] = phi
		}
		l.ready = true
		return
	}

	for k, bin := range l.fftFreq {
		mag := cmplx.Abs(bin)
		phiCurr := cmplx.Phase(bin)
		phiPrev := l.analysisPhasePrev[k]
		l.analysisPhasePrev[k] = phiCurr

		expected := 2 * math.Pi * float64(k) / oa
		dev := wrap(phiCurr-phiPrev-expected) / ha
		omega := 2 * math.Pi * float64(k) / w
		trueFreq := omega + dev
		trueBin := trueFreq * w / (2 * math.Pi)

		phiSyn := wrap(trueBin*2*math.Pi/os + l.synthesisPhasePrev[k])
		l.synthesisPhasePrev[k] = phiSyn

		l.fftFreq[k] = cmplx.Rect(mag, phiSyn)
	}
}

// wrap maps theta into (-pi, pi], per spec §4.2 / invariant I4.
func wrap(theta float64) float64 {
	m := math.Mod(theta+math.Pi, -2*math.Pi)
	if m > 0 {
		// math.Mod keeps the dividend's sign; shift into (-2pi, 0] so this
		// is a floored modulo by -2pi.
		m -= 2 * math.Pi
	}
	return m + math.Pi
}

// hannAt returns the periodic Hann window value at index n of a window of
// size w (scipy.signal.hann(w, sym=False) convention).
func hannAt(n, w int) float64 {
	return 0.5 * (1 - math.Cos(2*math.Pi*float64(n)/float64(w)))
}

// Reset prepares the lane for the next beat: the "first frame of this
// beat" phase anchor is cleared, the FFT ring-fill flag is cleared, and the
// resampler is reset. Per spec §4.2, the phase buffers and FFT ring
// contents are intentionally left untouched; new samples overwrite them in
// order.
func (l *Lane) Reset() {
	l.ready = false
	l.fftRingReady = false
	l.fftHead = 0
	l.interp.Reset()
}

// SetBypassPhasePropagation disables phase propagation, the setting under
// which invariant I5 (overlap-add reconstruction identity) holds. No test
// in this package calls it.
func (l *Lane) SetBypassPhasePropagation(bypass bool) {
	l.bypassPhasePropagation = bypass
}

// HopSize returns the integer synthesis hop this lane will report on a
// successful frame (floor(HS)).
func (l *Lane) HopSize() int {
	return int(math.Floor(l.hs))
}

// AnalysisHopSize returns HA, the number of input samples consumed per
// analysis step.
func (l *Lane) AnalysisHopSize() int {
	return l.ha
}

// MaxNeedSamples returns max_need_samples(HA). The lane produces an
// analysis hop only once one more than this many input samples are queued.
func (l *Lane) MaxNeedSamples() int {
	return l.maxNeed
}

// WindowSize returns W.
func (l *Lane) WindowSize() int {
	return len(l.fftRing)
}
