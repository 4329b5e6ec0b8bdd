package gamelanizer

import (
	"fmt"
	"math"

	"github.com/lukemcraig/gamelanizer/internal/ring"
	"github.com/lukemcraig/gamelanizer/internal/vocoder"
)

// Debug gates the audio path's bounds assertions (spec §7: "must fail
// loudly in debug builds (assertion), never silently in release builds").
// Host applications set this to true in debug builds; it defaults to
// false so a misconfigured release build (bpm too low for the configured
// MaxSamplesPerBeat) keeps running on oversized ring-buffer indices
// instead of panicking mid-stream.
var Debug = false

// Engine is the beat-aligned scheduler (spec §4.4): it owns one
// PhaseVocoderLane per subdivision level, the dry-signal delay line, the
// multi-channel output ring buffer, and the beat state machine that
// drives where each lane's synthesis frames get splatted.
type Engine struct {
	cfg    Config
	powers []int // powers[l] = 2^(l+1), both the splat replication count and the vocoder time-scale divisor for level l
	lanes  []*vocoder.Lane

	isPlaying      bool
	bpmEffective   float64
	samplesPerBeat float64

	beatNumber        uint32
	beatB             bool
	beatSampleIndices [2]uint64
	samplesIntoBeat   uint64

	levelWidth     []int64
	lvlWritePos    []int64
	lvlAccumulated []int64
	firstPos       []int64 // diagnostic snapshot of lvlWritePos at first play

	delayLag uint64 // D, the configured dry-path lag in samples

	outBuf *ring.LaneRing
	delay  *ring.DelayLine
}

// NewEngine validates cfg and allocates an Engine with every buffer sized
// for cfg.MaxSamplesPerBeat, per spec §6.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := cfg.NumSubdivisionLevels
	e := &Engine{
		cfg:            cfg,
		powers:         make([]int, l),
		lanes:          make([]*vocoder.Lane, l),
		levelWidth:     make([]int64, l),
		lvlWritePos:    make([]int64, l),
		lvlAccumulated: make([]int64, l),
		firstPos:       make([]int64, l),
		outBuf:         ring.NewLaneRing(l, 4*cfg.MaxSamplesPerBeat),
		delay:          ring.NewDelayLine(3 * cfg.MaxSamplesPerBeat),
	}

	for level := 0; level < l; level++ {
		power := 1 << uint(level+1)
		e.powers[level] = power

		pitch := math.Pow(cfg.PitchShiftFactor, float64(level+1))
		num, den := limitDenominator(pitch, 1000)

		lane, err := vocoder.New(vocoder.Config{
			AnalysisWindowSize:    cfg.AnalysisWindowSize,
			AnalysisOverlapFactor: cfg.AnalysisOverlap,
			PitchNum:              num,
			PitchDen:              den,
			Power:                 power,
		})
		if err != nil {
			return nil, fmt.Errorf("gamelanizer: level %d: %w", level, err)
		}
		e.lanes[level] = lane
	}

	return e, nil
}

// Prepare adopts bpm as the session's effective tempo and initializes the
// beat state machine. Only the first call (across the engine's lifetime)
// has an effect, per spec §9's single-tempo-per-session design: "the
// current design assumes a single tempo active for the full session".
func (e *Engine) Prepare(bpm float64) {
	if e.isPlaying {
		return
	}
	e.isPlaying = true

	e.bpmEffective = bpm
	e.samplesPerBeat = float64(e.cfg.SampleRate) * 60 / bpm

	if Debug && e.samplesPerBeat > float64(e.cfg.MaxSamplesPerBeat) {
		panic(fmt.Sprintf("gamelanizer: samples_per_beat %v exceeds configured max_samples_per_beat %d (bpm %v below configured minimum)", e.samplesPerBeat, e.cfg.MaxSamplesPerBeat, bpm))
	}

	e.beatNumber = 0
	e.samplesIntoBeat = 0
	e.beatSampleIndices[0] = 0
	e.beatSampleIndices[1] = uint64(math.RoundToEven(e.samplesPerBeat))

	e.recomputeLevelWidths()

	e.lvlWritePos[len(e.lanes)-1] = int64(math.RoundToEven(2 * e.samplesPerBeat))
	for level := len(e.lanes) - 2; level >= 0; level-- {
		e.lvlWritePos[level] = e.lvlWritePos[level+1] + e.levelWidth[level+1]
	}
	copy(e.firstPos, e.lvlWritePos)

	sumWidths := int64(0)
	for _, w := range e.levelWidth {
		sumWidths += w
	}
	e.delayLag = uint64(math.Ceil(2*e.samplesPerBeat + float64(sumWidths)))
	e.delay.SetLag(e.delayLag)
}

// IsPlaying reports whether Prepare has been called.
func (e *Engine) IsPlaying() bool {
	return e.isPlaying
}

// ProcessSample runs the full per-sample pipeline from spec §4.4: write
// the dry sample into the delay line, read the current mix, push the
// sample through every lane (splatting any emitted frame), advance the
// beat state machine, and advance the ring cursors.
func (e *Engine) ProcessSample(x float32) float32 {
	e.delay.Push(x)

	y := e.outBuf.ReadAndClear() + e.delay.Read()

	for level, lane := range e.lanes {
		hop := lane.PushSample(x)
		e.lvlAccumulated[level] += int64(hop)
		if hop > 0 {
			e.splat(level, hop)
		}
	}

	if e.samplesIntoBeat+e.beatSampleIndices[0] >= e.beatSampleIndices[1] {
		e.rolloverBeat()
	} else {
		e.samplesIntoBeat++
	}

	e.delay.Advance()

	return y
}

// splat accumulates lane level's most recent synthesis frame into the
// output ring at its 2^(level+1) replicated write heads, per spec §4.4.1.
func (e *Engine) splat(level, hop int) {
	power := e.powers[level]
	beatLen := float64(e.beatSampleIndices[1] - e.beatSampleIndices[0])
	beatLenScaled := beatLen / float64(power)
	step := 2 * beatLenScaled

	frame := e.lanes[level].Frame()
	for i := 0; i < power; i++ {
		head := e.lvlWritePos[level] + int64(math.Floor(step*float64(i)))
		e.outBuf.Splat(level, head, frame)
	}

	e.lvlWritePos[level] += int64(hop)
}

// rolloverBeat implements spec §4.4.2: correct each lane's write cursor
// for the shortfall between its accumulated synthesis samples and the
// beat's nominal width, reset every lane, flip the A/B beat flag (jumping
// write heads forward at the end of B per §4.4.3), and advance the beat
// window.
func (e *Engine) rolloverBeat() {
	for level, lane := range e.lanes {
		missing := e.levelWidth[level] - e.lvlAccumulated[level]
		e.lvlWritePos[level] += missing
		e.lvlAccumulated[level] = 0
		lane.Reset()
	}
	e.recomputeLevelWidths()

	e.beatB = !e.beatB
	if !e.beatB {
		e.writePosJumpAtEndOfB()
	}

	e.samplesIntoBeat = 0
	e.beatNumber++
	e.beatSampleIndices[0] = e.beatSampleIndices[1]
	e.beatSampleIndices[1] = uint64(math.RoundToEven(e.samplesPerBeat * float64(e.beatNumber+1)))
}

// recomputeLevelWidths derives level_width[l] = round(samples_per_beat /
// 2^(l+1)) for every lane, using the same round-half-to-even convention as
// the Python prototype's np.round. Called once at Prepare and again at
// every beat rollover, matching the source's update_level_sample_widths
// call sites (a no-op under the single-tempo-per-session assumption, but
// kept so a future tempo-aware PlayHead only has to change samplesPerBeat).
func (e *Engine) recomputeLevelWidths() {
	for level := range e.lanes {
		e.levelWidth[level] = int64(math.RoundToEven(e.samplesPerBeat / float64(uint64(1)<<uint(level+1))))
	}
}

// writePosJumpAtEndOfB implements spec §4.4.3: after every second beat,
// skip each lane's write cursor past the 2^(l+2)-2 notes already scheduled
// via splat replication.
func (e *Engine) writePosJumpAtEndOfB() {
	beatLen := float64(e.beatSampleIndices[1] - e.beatSampleIndices[0])
	for level := range e.lanes {
		beatLenScaled := beatLen / float64(e.powers[level])
		notesToJump := float64(int64(1)<<uint(level+2) - 2)
		e.lvlWritePos[level] += int64(math.Floor(beatLenScaled * notesToJump))
	}
}

// BeatNumber reports the number of completed beats.
func (e *Engine) BeatNumber() uint32 {
	return e.beatNumber
}

// SamplesPerBeat reports the effective samples-per-beat adopted at first
// play (0 before Prepare is called).
func (e *Engine) SamplesPerBeat() float64 {
	return e.samplesPerBeat
}

// DelayLagSamples reports D, the configured dry-signal delay in samples
// (0 before Prepare is called).
func (e *Engine) DelayLagSamples() int {
	return int(e.delayLag)
}
