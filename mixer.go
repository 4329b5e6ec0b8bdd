package gamelanizer

// Mixer is the host-block shim between a fixed-size audio callback and the
// Engine's sample-synchronous API: it queries the PlayHead once per block
// (spec §4.3, "the play head's bpm is sampled once per processed block, not
// per sample") and drives the Engine one sample at a time across the block.
type Mixer struct {
	engine   *Engine
	playHead *PlayHead
}

// NewMixer binds an Engine to a PlayHead. Both must already be constructed;
// the Mixer does not own their lifetimes.
func NewMixer(engine *Engine, playHead *PlayHead) *Mixer {
	return &Mixer{engine: engine, playHead: playHead}
}

// ProcessBlock processes block in place: it positions the play head at
// blockStartSample, reads its current BPM to (idempotently) prepare the
// engine on first use, and replaces every sample with the engine's wet
// output.
func (m *Mixer) ProcessBlock(block []float32, blockStartSample uint64, sampleRate uint32) {
	m.playHead.MoveToSample(blockStartSample, sampleRate)
	bpm, _, _, _ := m.playHead.Position()
	m.engine.Prepare(bpm)

	for i, x := range block {
		block[i] = m.engine.ProcessSample(x)
	}
}
