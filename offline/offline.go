// Package offline drives the realtime gamelanizer.Engine/gamelanizer.Mixer
// to completion over a full in-memory buffer in a single call. It is not a
// second implementation of the algorithm — the Python prototype this was
// distilled from has both a frame-based engine and a vectorized "offline"
// cross-check (gamelanizer_offline.py / negative_delay.py); here the
// cross-check role is filled by running the same streaming engine, which
// is simpler to keep in sync and never drifts from the realtime path.
package offline

import "github.com/lukemcraig/gamelanizer"

// Render processes input through a fresh Engine/Mixer pair at the given
// bpm and sample rate, in blocks of hwBufferSize samples (matching how a
// realtime host would call Mixer.ProcessBlock), and returns the complete
// wet output.
func Render(cfg gamelanizer.Config, bpm float64, sampleRate uint32, input []float32) ([]float32, error) {
	cfg.SampleRate = sampleRate

	engine, err := gamelanizer.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	playHead, err := gamelanizer.NewPlayHead(gamelanizer.NewConstantTempoMarkers(bpm, 4, 4))
	if err != nil {
		return nil, err
	}
	mixer := gamelanizer.NewMixer(engine, playHead)

	blockSize := cfg.HWBufferSize
	if blockSize <= 0 {
		blockSize = len(input)
	}

	out := make([]float32, len(input))
	copy(out, input)

	for start := 0; start < len(out); start += blockSize {
		end := start + blockSize
		if end > len(out) {
			end = len(out)
		}
		mixer.ProcessBlock(out[start:end], uint64(start), sampleRate)
	}

	return out, nil
}
