package gamelanizer

// PlayHead maps a sample index to (bpm, ppq, sample, seconds) using an
// immutable tempo-markers table, per spec §4.3. Its state is mutated only
// between blocks, by the Mixer.
type PlayHead struct {
	markers Markers

	timeSamples uint64
	timeSeconds float64
}

// NewPlayHead constructs a play head over the given tempo-markers table.
// The table is not copied; callers must not mutate it afterward. Returns
// an error if markers fails its transport contract precondition (spec
// §6): non-empty, first marker at time 0, sorted, every BPM positive.
func NewPlayHead(markers Markers) (*PlayHead, error) {
	if err := markers.Validate(); err != nil {
		return nil, err
	}
	return &PlayHead{markers: markers}, nil
}

// MoveToSample repositions the play head to the given absolute sample
// index at the given sample rate.
func (p *PlayHead) MoveToSample(sample uint64, sampleRate uint32) {
	p.timeSamples = sample
	p.timeSeconds = float64(sample) / float64(sampleRate)
}

// Position returns the tempo and position active at the play head's
// current time: the BPM of the active marker, the PPQ position (pulses
// per quarter note, fractional), the absolute sample index, and the time
// in seconds.
func (p *PlayHead) Position() (bpm, ppq float64, sample uint64, seconds float64) {
	idx, ppqBefore := p.activeMarkerAndPPQBefore()

	marker := p.markers[idx]
	durationS := p.timeSeconds - marker.TimePositionS
	ppq = ppqBefore + (marker.BPM/60)*durationS

	return marker.BPM, ppq, p.timeSamples, p.timeSeconds
}

// activeMarkerAndPPQBefore locates the latest marker whose time position
// is <= the play head's current time, and accumulates the PPQ contributed
// by every earlier marker span.
func (p *PlayHead) activeMarkerAndPPQBefore() (idx int, ppqBefore float64) {
	for j := 1; j < len(p.markers); j++ {
		current := p.markers[j]
		if current.TimePositionS > p.timeSeconds {
			break
		}
		prev := p.markers[j-1]
		durationS := current.TimePositionS - prev.TimePositionS
		ppqBefore += (prev.BPM / 60) * durationS
		idx = j
	}
	return idx, ppqBefore
}
