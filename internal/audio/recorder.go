// Package audio captures microphone input with malgo and reads and writes
// the WAV files saved alongside notes.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// ErrAlreadyRecording is returned by Start while a capture is running.
var ErrAlreadyRecording = errors.New("audio: already recording")

// Recorder captures float32 frames from the default microphone. The whole
// take is kept for saving; Drain hands out the frames that arrived since
// the previous call so they can be transcribed while recording continues.
type Recorder struct {
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate uint32
	channels   uint32

	mu        sync.Mutex
	take      []float32
	drained   int
	recording bool
}

// NewRecorder opens an audio context. Call Close when done.
func NewRecorder(sampleRate, channels uint32) (*Recorder, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: init context: %w", err)
	}
	return &Recorder{
		ctx:        ctx,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// SampleRate returns the capture rate in Hz.
func (r *Recorder) SampleRate() uint32 { return r.sampleRate }

// Channels returns the number of interleaved capture channels.
func (r *Recorder) Channels() uint32 { return r.channels }

// Start begins a new take from the default microphone.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.take = r.take[:0]
	r.drained = 0
	r.recording = true
	r.mu.Unlock()

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatF32
	deviceCfg.Capture.Channels = r.channels
	deviceCfg.SampleRate = r.sampleRate

	device, err := malgo.InitDevice(r.ctx.Context, deviceCfg, malgo.DeviceCallbacks{Data: r.onData})
	if err != nil {
		r.abort()
		return fmt.Errorf("audio: init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		r.abort()
		return fmt.Errorf("audio: start capture device: %w", err)
	}

	r.mu.Lock()
	r.device = device
	r.mu.Unlock()
	return nil
}

func (r *Recorder) abort() {
	r.mu.Lock()
	r.recording = false
	r.mu.Unlock()
}

// Drain returns a copy of the samples captured since the last Drain (or
// since Start). It returns nil when nothing new has arrived.
func (r *Recorder) Drain() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drained >= len(r.take) {
		return nil
	}
	out := make([]float32, len(r.take)-r.drained)
	copy(out, r.take[r.drained:])
	r.drained = len(r.take)
	return out
}

// Stop ends the take and returns every sample captured since Start,
// including those already handed out by Drain. It returns nil when no
// take is running.
func (r *Recorder) Stop() []float32 {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil
	}
	device := r.device
	r.device = nil
	r.recording = false
	out := make([]float32, len(r.take))
	copy(out, r.take)
	r.mu.Unlock()

	// Uninit waits for the data callback, which takes r.mu.
	if device != nil {
		device.Uninit()
	}
	return out
}

// IsRecording reports whether a take is running.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Close stops any running take and releases the audio context.
func (r *Recorder) Close() error {
	r.Stop()

	if r.ctx != nil {
		if err := r.ctx.Uninit(); err != nil {
			return fmt.Errorf("audio: uninit context: %w", err)
		}
		r.ctx.Free()
		r.ctx = nil
	}
	return nil
}

// onData is the malgo capture callback; input holds little-endian float32
// frames.
func (r *Recorder) onData(_, input []byte, frameCount uint32) {
	samples := decodeF32(input, int(frameCount*r.channels))

	r.mu.Lock()
	if r.recording {
		r.take = append(r.take, samples...)
	}
	r.mu.Unlock()
}

func decodeF32(data []byte, n int) []float32 {
	if avail := len(data) / 4; n > avail {
		n = avail
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
