// Command gamelanize runs the gamelan-cascade effect over a mono 16-bit
// PCM WAV file, either rendering straight to an output file or streaming
// the result to the default audio device in realtime. Adapted from the
// teacher modplayer CLI's flag-parsing, portaudio-streaming, and
// colored-status-line conventions.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"
	flag "github.com/spf13/pflag"

	"github.com/lukemcraig/gamelanizer"
	"github.com/lukemcraig/gamelanizer/offline"
	"github.com/lukemcraig/gamelanizer/wavio"
)

var (
	flagIn      = flag.String("in", "", "input mono 16-bit PCM WAV file (required)")
	flagOut     = flag.String("out", "", "output WAV file; if empty, stream to the default audio device instead")
	flagBPM     = flag.Float64("bpm", 120, "tempo of the input, in beats per minute")
	flagPitch   = flag.Float64("pitch", 4.0/3.0, "pitch shift factor applied per subdivision level")
	flagLevels  = flag.Int("levels", 2, "number of subdivision levels")
	flagWindow  = flag.Int("window", 1024, "analysis window size, must be a power of two")
	flagOverlap = flag.Int("overlap", 4, "analysis overlap factor")
	flagBuffer  = flag.Int("buffer", 1024, "host buffer size in samples")
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("gamelanize: ")
	flag.Parse()

	if *flagIn == "" {
		log.Fatal("missing --in")
	}

	inF, err := os.Open(*flagIn)
	if err != nil {
		log.Fatal(err)
	}
	sampleRate, pcm, err := wavio.ReadMono(inF)
	inF.Close()
	if err != nil {
		log.Fatal(err)
	}

	cfg := gamelanizer.DefaultConfig().Clone()
	cfg.HWBufferSize = *flagBuffer
	cfg.AnalysisWindowSize = *flagWindow
	cfg.AnalysisOverlap = *flagOverlap
	cfg.NumSubdivisionLevels = *flagLevels
	cfg.PitchShiftFactor = *flagPitch

	input := wavio.PCM16ToFloat(pcm)

	if *flagOut != "" {
		renderToFile(cfg, sampleRate, input)
		return
	}
	streamRealtime(cfg, sampleRate, input)
}

func renderToFile(cfg gamelanizer.Config, sampleRate uint32, input []float32) {
	out, err := offline.Render(cfg, *flagBPM, sampleRate, input)
	if err != nil {
		log.Fatal(err)
	}

	outF, err := os.Create(*flagOut)
	if err != nil {
		log.Fatal(err)
	}
	defer outF.Close()

	if err := wavio.WriteMono(outF, sampleRate, wavio.FloatToPCM16(out)); err != nil {
		log.Fatal(err)
	}

	fmt.Println(color.GreenString("wrote %s (%d samples)", *flagOut, len(out)))
}

func streamRealtime(cfg gamelanizer.Config, sampleRate uint32, input []float32) {
	cfg.SampleRate = sampleRate
	engine, err := gamelanizer.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	playHead, err := gamelanizer.NewPlayHead(gamelanizer.NewConstantTempoMarkers(*flagBPM, 4, 4))
	if err != nil {
		log.Fatal(err)
	}
	mixer := gamelanizer.NewMixer(engine, playHead)

	if err := portaudio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer portaudio.Terminate()

	var pos atomic.Int64
	var beat atomic.Uint32 // engine.BeatNumber(), published by the callback
	streamCB := func(out []float32) {
		p := int(pos.Load())
		n := copy(out, input[p:])
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		mixer.ProcessBlock(out, uint64(p), sampleRate)
		beat.Store(engine.BeatNumber())
		pos.Add(int64(n))
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), cfg.HWBufferSize, streamCB)
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		log.Fatal(err)
	}
	defer stream.Stop()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)
	go func() {
		<-sigch
		stream.Stop()
		portaudio.Terminate()
		fmt.Print(showCursor)
		os.Exit(0)
	}()

	fmt.Print(hideCursor)
	cyan := color.New(color.FgCyan).SprintfFunc()
	for int(pos.Load()) < len(input) {
		fmt.Printf("\r%s", cyan("beat %d / %.1f bpm", beat.Load(), *flagBPM))
		time.Sleep(100 * time.Millisecond)
	}
	fmt.Println()
	fmt.Print(showCursor)
}
