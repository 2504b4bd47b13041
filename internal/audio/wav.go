package audio

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavPCMFormat = 1
	pcm16Scale   = 32767
)

// WriteWAV saves interleaved float32 samples in [-1, 1] as a 16-bit PCM WAV
// file. Out-of-range samples are clipped.
func WriteWAV(path string, samples []float32, sampleRate, channels uint32) error {
	if channels == 0 {
		return fmt.Errorf("audio: write wav: channels must be > 0")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("audio: create recordings dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create wav: %w", err)
	}

	enc := wav.NewEncoder(f, int(sampleRate), wavBitDepth, int(channels), wavPCMFormat)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: int(channels), SampleRate: int(sampleRate)},
		Data:           make([]int, len(samples)),
		SourceBitDepth: wavBitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(clip(s) * pcm16Scale)
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("audio: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("audio: finalize wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audio: close wav: %w", err)
	}
	return nil
}

// ReadWAV decodes a PCM WAV file into mono float32 samples in [-1, 1] and
// returns them with the file's sample rate.
func ReadWAV(path string) ([]float32, uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("audio: %s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("audio: decode wav: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = wavBitDepth
	}
	scale := float32(int64(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}

	channels := uint32(dec.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = uint32(buf.Format.NumChannels)
	}
	return Downmix(samples, channels), dec.SampleRate, nil
}

// Downmix averages interleaved frames into a single channel. Mono input is
// returned unchanged; a trailing partial frame is dropped.
func Downmix(samples []float32, channels uint32) []float32 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / int(channels)
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < int(channels); c++ {
			sum += samples[i*int(channels)+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

func clip(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}
