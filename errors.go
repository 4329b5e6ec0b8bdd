package gamelanizer

import "errors"

// Sentinel configuration errors, checkable with errors.Is. The engine
// itself never returns an error once constructed (spec §7: "Audio-path
// errors do not exist by construction"); these only arise from
// construction-time validation.
var (
	ErrInvalidSampleRate   = errors.New("gamelanizer: sample rate must be > 0")
	ErrInvalidBlockSize    = errors.New("gamelanizer: hw buffer size must be > 0")
	ErrInvalidWindowSize   = errors.New("gamelanizer: analysis window size must be a power of two")
	ErrInvalidOverlap      = errors.New("gamelanizer: analysis overlap factor must be >= 2")
	ErrInvalidLevels       = errors.New("gamelanizer: num subdivision levels must be >= 1")
	ErrInvalidPitch        = errors.New("gamelanizer: pitch shift factor must be > 0")
	ErrInvalidMaxBeatLen   = errors.New("gamelanizer: max samples per beat must be > 0")
	ErrInvalidTempoMarkers = errors.New("gamelanizer: invalid tempo markers table")
)
