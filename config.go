package gamelanizer

import (
	"fmt"

	clone "github.com/huandu/go-clone/generic"
)

// Config is the construction-time, immutable-after-validation
// configuration of an Engine (spec §6 "Configuration (construction-time
// only)"). Zero values are not valid; use DefaultConfig or populate every
// field and call Validate.
type Config struct {
	HWBufferSize        int
	AnalysisWindowSize  int
	AnalysisOverlap     int
	NumSubdivisionLevels int
	SampleRate          uint32
	PitchShiftFactor    float64
	MaxSamplesPerBeat   int
}

// DefaultConfig mirrors the parameters used throughout the Gamelanizer
// prototype's __main__ driver and spec §8's end-to-end scenarios.
func DefaultConfig() Config {
	return Config{
		HWBufferSize:         1024,
		AnalysisWindowSize:   1024,
		AnalysisOverlap:      4,
		NumSubdivisionLevels: 2,
		SampleRate:           44100,
		PitchShiftFactor:     4.0 / 3.0,
		MaxSamplesPerBeat:    400000,
	}
}

// Clone returns a deep copy of cfg, in the teacher's
// clone.Clone(testSong)-derived-fixture style: callers (tests, or the CLI
// deriving a per-session config) can clone DefaultConfig() and mutate one
// field without risk of aliasing the shared default.
func (c Config) Clone() Config {
	return clone.Clone(c)
}

// Validate checks every construction-time precondition from spec §7 and
// §6, returning an error identifying the first violation. Every check
// except the window-size/overlap divisibility one returns (or wraps) one
// of the sentinel errors.
func (c Config) Validate() error {
	if c.SampleRate == 0 {
		return ErrInvalidSampleRate
	}
	if c.HWBufferSize <= 0 {
		return ErrInvalidBlockSize
	}
	if c.AnalysisWindowSize <= 0 || c.AnalysisWindowSize&(c.AnalysisWindowSize-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindowSize, c.AnalysisWindowSize)
	}
	if c.AnalysisOverlap < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidOverlap, c.AnalysisOverlap)
	}
	if c.AnalysisWindowSize%c.AnalysisOverlap != 0 {
		return fmt.Errorf("gamelanizer: analysis window size %d not divisible by overlap factor %d", c.AnalysisWindowSize, c.AnalysisOverlap)
	}
	if c.NumSubdivisionLevels < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLevels, c.NumSubdivisionLevels)
	}
	if c.PitchShiftFactor <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidPitch, c.PitchShiftFactor)
	}
	if c.MaxSamplesPerBeat <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxBeatLen, c.MaxSamplesPerBeat)
	}
	return nil
}
