package gamelanizer

import "fmt"

// TempoMarker is one entry of the tempo-markers table supplied by the
// host's transport (spec §6): a fixed tempo and time signature effective
// from time_position_s onward, until the next marker.
type TempoMarker struct {
	TimePositionS float64
	BPM           float64
	TimeSigTop    uint16
	TimeSigBottom uint16
}

// Markers is an immutable, time-sorted tempo-markers table.
type Markers []TempoMarker

// NewConstantTempoMarkers builds a single-marker table for a session that
// never changes tempo, the common case exercised by the Gamelanizer
// prototype's __main__ driver (one TempoMarker per song).
func NewConstantTempoMarkers(bpm float64, timeSigTop, timeSigBottom uint16) Markers {
	return Markers{{TimePositionS: 0, BPM: bpm, TimeSigTop: timeSigTop, TimeSigBottom: timeSigBottom}}
}

// Validate checks the transport contract precondition from spec §6:
// markers[0].time_position == 0.0, the table is non-empty, sorted, and
// every BPM is positive.
func (m Markers) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("%w: table is empty", ErrInvalidTempoMarkers)
	}
	if m[0].TimePositionS != 0.0 {
		return fmt.Errorf("%w: first tempo marker must be at time 0, got %v", ErrInvalidTempoMarkers, m[0].TimePositionS)
	}
	for i, marker := range m {
		if marker.BPM <= 0 {
			return fmt.Errorf("%w: tempo marker %d has non-positive bpm %v", ErrInvalidTempoMarkers, i, marker.BPM)
		}
		if i > 0 && marker.TimePositionS < m[i-1].TimePositionS {
			return fmt.Errorf("%w: tempo markers must be sorted by time, marker %d precedes marker %d", ErrInvalidTempoMarkers, i, i-1)
		}
	}
	return nil
}
