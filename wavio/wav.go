// Package wavio is the file-format boundary between the engine's float32
// samples and 16-bit PCM mono WAV files. Adapted from the teacher's wav
// writer (originally stereo int16, written to disk one WriteFrame call at
// a time with the header sizes backfilled on Finish) for gamelanizer's
// mono, whole-buffer use: cmd/gamelanize reads a full input file up front
// and writes a full output buffer in one Write call.
// See http://soundfile.sapp.org/doc/WaveFormat/ for format documentation.
package wavio

import (
	"encoding/binary"
	"fmt"
	"io"
)

const pcmFormat = 1

// format is the WAV "fmt " chunk body for 16-bit mono PCM.
type format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// FloatToPCM16 converts full-scale float32 samples (nominally in [-1, 1])
// to 16-bit signed PCM, clamping out-of-range values rather than wrapping,
// per the Python prototype's mixing_utils float_to_pcm16.
func FloatToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := float64(s) * 32768
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// PCM16ToFloat converts 16-bit signed PCM to full-scale float32 samples.
func PCM16ToFloat(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768
	}
	return out
}

// WriteMono writes samples as a complete mono 16-bit PCM WAV file to w.
// Unlike the teacher's streaming Writer, the whole buffer is known up
// front, so the header's size fields are computed directly instead of
// backfilled via Seek.
func WriteMono(w io.Writer, sampleRate uint32, samples []int16) error {
	dataSize := uint32(len(samples)) * 2

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataSize)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVE")); err != nil {
		return err
	}

	if _, err := w.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	f := format{
		AudioFormat:   pcmFormat,
		Channels:      1,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
	}
	if err := binary.Write(w, binary.LittleEndian, f); err != nil {
		return err
	}

	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, samples)
}

// ReadMono reads a 16-bit PCM mono WAV file from r, returning its sample
// rate and samples. Only a single "fmt " and "data" chunk pair is
// supported; other chunk types are skipped.
func ReadMono(r io.Reader) (sampleRate uint32, samples []int16, err error) {
	var riffTag [4]byte
	if _, err := io.ReadFull(r, riffTag[:]); err != nil {
		return 0, nil, fmt.Errorf("wavio: read RIFF tag: %w", err)
	}
	if string(riffTag[:]) != "RIFF" {
		return 0, nil, fmt.Errorf("wavio: not a RIFF file")
	}
	var riffSize uint32
	if err := binary.Read(r, binary.LittleEndian, &riffSize); err != nil {
		return 0, nil, err
	}
	var waveTag [4]byte
	if _, err := io.ReadFull(r, waveTag[:]); err != nil {
		return 0, nil, err
	}
	if string(waveTag[:]) != "WAVE" {
		return 0, nil, fmt.Errorf("wavio: not a WAVE file")
	}

	var f format
	haveFormat := false

	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			if err == io.EOF {
				break
			}
			return 0, nil, err
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return 0, nil, err
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
				return 0, nil, fmt.Errorf("wavio: read fmt chunk: %w", err)
			}
			haveFormat = true
			if chunkSize > 16 {
				if err := discard(r, int64(chunkSize)-16); err != nil {
					return 0, nil, err
				}
			}
		case "data":
			if !haveFormat {
				return 0, nil, fmt.Errorf("wavio: data chunk before fmt chunk")
			}
			if f.BitsPerSample != 16 || f.Channels != 1 {
				return 0, nil, fmt.Errorf("wavio: only 16-bit mono PCM is supported, got %d channels / %d bits", f.Channels, f.BitsPerSample)
			}
			samples = make([]int16, chunkSize/2)
			if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
				return 0, nil, fmt.Errorf("wavio: read data chunk: %w", err)
			}
			sampleRate = f.SampleRate
		default:
			if err := discard(r, int64(chunkSize)); err != nil {
				return 0, nil, err
			}
		}
	}

	if samples == nil {
		return 0, nil, fmt.Errorf("wavio: no data chunk found")
	}
	return sampleRate, samples, nil
}

func discard(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
