package vocoder

import (
	"math"
	"testing"
)

func baseConfig() Config {
	return Config{
		AnalysisWindowSize:    1024,
		AnalysisOverlapFactor: 4,
		PitchNum:              1,
		PitchDen:              1,
		Power:                 2,
	}
}

func TestNewRejectsNonPowerOfTwoWindow(t *testing.T) {
	cfg := baseConfig()
	cfg.AnalysisWindowSize = 1000
	if _, err := New(cfg); err == nil {
		t.Error("expected an error for a non-power-of-two window size")
	}
}

func TestNewRejectsSmallOverlap(t *testing.T) {
	cfg := baseConfig()
	cfg.AnalysisOverlapFactor = 1
	if _, err := New(cfg); err == nil {
		t.Error("expected an error for overlap factor < 2")
	}
}

func TestSilenceProducesSilence(t *testing.T) {
	lane, err := New(baseConfig())
	if err != nil {
		t.Fatal(err)
	}

	sawFrame := false
	for i := 0; i < lane.WindowSize()*4; i++ {
		if hop := lane.PushSample(0); hop > 0 {
			sawFrame = true
			for _, v := range lane.Frame() {
				if v != 0 {
					t.Fatalf("expected silence, got %v at sample %d", v, i)
				}
			}
		}
	}
	if !sawFrame {
		t.Fatal("expected at least one synthesis frame from a long silent run")
	}
}

func TestNoNaNsOnSineInput(t *testing.T) {
	lane, err := New(baseConfig())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < lane.WindowSize()*8; i++ {
		x := float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/44100))
		if hop := lane.PushSample(x); hop > 0 {
			for _, v := range lane.Frame() {
				if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
					t.Fatalf("non-finite sample %v at output frame, input index %d", v, i)
				}
			}
		}
	}
}

// TestOverlapAddReconstructsDC is the DC scenario (S3): with pitchNum ==
// pitchDen and power 1 (time_scale == 1), a constant input should
// reconstruct to approximately the same constant after warm-up.
func TestOverlapAddReconstructsDC(t *testing.T) {
	cfg := baseConfig()
	cfg.Power = 1
	lane, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	const dc = 0.5
	var lastFrame []float32
	for i := 0; i < lane.WindowSize()*10; i++ {
		if hop := lane.PushSample(dc); hop > 0 {
			lastFrame = append([]float32(nil), lane.Frame()...)
		}
	}
	if lastFrame == nil {
		t.Fatal("no frame produced")
	}

	// Overlap-add of OA identical Hann-windowed, amplitude-compensated
	// frames, each offset by one synthesis hop, reconstructs the DC level.
	mid := len(lastFrame) / 2
	hop := lane.HopSize()
	sum := float32(0)
	for l := 0; l < cfg.AnalysisOverlapFactor; l++ {
		sum += lastFrame[(mid+l*hop)%len(lastFrame)]
	}
	got := sum
	if math.Abs(float64(got-dc)) > 0.01*dc*float64(cfg.AnalysisOverlapFactor) {
		t.Errorf("reconstructed level %v too far from expected scale of dc=%v", got, dc)
	}
}

func TestResetClearsReadyFlagButKeepsBuffersIntact(t *testing.T) {
	lane, err := New(baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < lane.WindowSize()*2; i++ {
		lane.PushSample(float32(i % 7))
	}
	lane.Reset()
	if lane.ready {
		t.Error("ready should be false after Reset")
	}
	if lane.fftRingReady {
		t.Error("fftRingReady should be false after Reset")
	}
	if lane.fftHead != 0 {
		t.Error("fftHead should be reset to 0")
	}
}

// TestMaxNeedSamplesUsesPitchNumOverPitchDen pins down the ratio
// convention (actual_ratio = pitch_num/pitch_den, spec §4.2 step 2 and
// I3): for the spec's own canonical level-0 config (W=1024, OA=4,
// pitchNum=4, pitchDen=3) the resampler needs more input samples than
// output samples, not fewer.
func TestMaxNeedSamplesUsesPitchNumOverPitchDen(t *testing.T) {
	ha := 1024 / 4
	got := maxNeedSamples(ha, 4, 3)
	want := int(math.Floor(float64(ha) * 4 / 3))
	if got != want {
		t.Fatalf("maxNeedSamples(%d, 4, 3) = %d, want %d", ha, got, want)
	}
	if got <= ha {
		t.Fatalf("maxNeedSamples(%d, 4, 3) = %d, expected more input samples than output for an upward pitch ratio", ha, got)
	}
}

// TestNonUnityPitchRatioDoesNotOverrunResamplerQueue exercises the spec's
// default config's level-0 ratio (pitchNum=4, pitchDen=3) over a long run
// to catch a resampler queue underrun/overrun from a wrong maxNeed
// formula (such a bug previously made PushSample resample against too
// few queued samples and panic inside the interpolator).
func TestNonUnityPitchRatioDoesNotOverrunResamplerQueue(t *testing.T) {
	cfg := baseConfig()
	cfg.PitchNum = 4
	cfg.PitchDen = 3
	cfg.Power = 2
	lane, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < lane.WindowSize()*20; i++ {
		x := float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/44100))
		lane.PushSample(x)
	}
}

// TestExtremePitchRatioGrowsResamplerQueue guards against a fixed-size
// resampler queue silently overflowing for a config whose max_need_samples
// exceeds the default queue capacity.
func TestExtremePitchRatioGrowsResamplerQueue(t *testing.T) {
	cfg := baseConfig()
	cfg.PitchNum = 1000
	cfg.PitchDen = 1
	cfg.Power = 1
	lane, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(lane.resamplerQueue) < lane.maxNeed+1 {
		t.Fatalf("resamplerQueue len = %d, want >= maxNeed+1 = %d", len(lane.resamplerQueue), lane.maxNeed+1)
	}

	for i := 0; i < lane.WindowSize()*2; i++ {
		lane.PushSample(float32(i % 5))
	}
}

func TestWrapStaysInRange(t *testing.T) {
	for _, theta := range []float64{0, math.Pi, -math.Pi, 3 * math.Pi, -3 * math.Pi, 100, -100} {
		w := wrap(theta)
		if w <= -math.Pi || w > math.Pi {
			t.Errorf("wrap(%v) = %v, want in (-pi, pi]", theta, w)
		}
		if w2 := wrap(w); math.Abs(w2-w) > 1e-9 {
			t.Errorf("wrap not idempotent: wrap(wrap(%v)) = %v, wrap(%v) = %v", theta, w2, theta, w)
		}
	}
}
