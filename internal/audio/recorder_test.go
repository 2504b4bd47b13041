package audio

import (
	"math"
	"path/filepath"
	"testing"
)

// newRecorder skips when no audio backend can be initialized (headless CI).
func newRecorder(t *testing.T, sampleRate, channels uint32) *Recorder {
	t.Helper()
	r, err := NewRecorder(sampleRate, channels)
	if err != nil {
		t.Skipf("no audio backend: %v", err)
	}
	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return r
}

func f32bytes(vals ...float32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		b := math.Float32bits(v)
		out = append(out, byte(b), byte(b>>8), byte(b>>16), byte(b>>24))
	}
	return out
}

func TestNewRecorder(t *testing.T) {
	r := newRecorder(t, 16000, 1)

	if r.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", r.SampleRate())
	}
	if r.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", r.Channels())
	}
	if r.IsRecording() {
		t.Error("IsRecording() should be false after creation")
	}
	if samples := r.Stop(); samples != nil {
		t.Errorf("Stop() without Start() = %d samples, want nil", len(samples))
	}
}

func TestDrainAndStop(t *testing.T) {
	// Exercise the buffering without a device by driving the callback.
	r := &Recorder{sampleRate: 16000, channels: 1, recording: true}

	r.onData(nil, f32bytes(0.5, -0.5), 2)
	first := r.Drain()
	if len(first) != 2 || first[0] != 0.5 || first[1] != -0.5 {
		t.Fatalf("Drain() = %v, want [0.5 -0.5]", first)
	}
	if again := r.Drain(); again != nil {
		t.Errorf("Drain() with nothing new = %v, want nil", again)
	}

	r.onData(nil, f32bytes(1), 1)
	if second := r.Drain(); len(second) != 1 || second[0] != 1 {
		t.Errorf("Drain() = %v, want [1]", second)
	}

	all := r.Stop()
	if len(all) != 3 {
		t.Fatalf("Stop() = %v, want all 3 samples", all)
	}
	if r.IsRecording() {
		t.Error("IsRecording() should be false after Stop")
	}

	r.onData(nil, f32bytes(0.25), 1)
	if got := r.Drain(); got != nil {
		t.Errorf("samples captured after Stop: %v", got)
	}
}

func TestDecodeF32(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x80, 0x3F, // 1.0
		0x00, 0x00, 0x00, 0x00, // 0.0
		0x00, 0x00, 0x80, 0xBF, // -1.0
	}
	got := decodeF32(data, 3)
	want := []float32{1, 0, -1}
	if len(got) != len(want) {
		t.Fatalf("decodeF32() returned %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	if short := decodeF32(data[:6], 3); len(short) != 1 {
		t.Errorf("decodeF32() on truncated data returned %d samples, want 1", len(short))
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio", "take.wav")
	in := []float32{0, 0.5, -0.5, 1, -1, 2}

	if err := WriteWAV(path, in, 16000, 1); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	out, rate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}
	if rate != 16000 {
		t.Errorf("sample rate = %d, want 16000", rate)
	}
	if len(out) != len(in) {
		t.Fatalf("ReadWAV() returned %d samples, want %d", len(out), len(in))
	}

	want := []float32{0, 0.5, -0.5, 1, -1, 1}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-3 {
			t.Errorf("sample[%d] = %f, want ~%f", i, out[i], want[i])
		}
	}
}

func TestWAVStereoDownmixedOnRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	in := []float32{0.5, 0.1, -0.2, -0.4}

	if err := WriteWAV(path, in, 44100, 2); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	out, rate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}
	if rate != 44100 {
		t.Errorf("sample rate = %d, want 44100", rate)
	}
	if len(out) != 2 {
		t.Fatalf("ReadWAV() returned %d samples, want 2", len(out))
	}
	if math.Abs(float64(out[0]-0.3)) > 1e-3 || math.Abs(float64(out[1]+0.3)) > 1e-3 {
		t.Errorf("downmixed = %v, want [0.3 -0.3]", out)
	}
}

func TestWriteWAVZeroChannels(t *testing.T) {
	if err := WriteWAV(filepath.Join(t.TempDir(), "x.wav"), []float32{0}, 16000, 0); err == nil {
		t.Error("WriteWAV() with zero channels should fail")
	}
}

func TestReadWAVNotWAV(t *testing.T) {
	if _, _, err := ReadWAV("/nonexistent/file.wav"); err == nil {
		t.Error("ReadWAV() on missing file should fail")
	}
}

func TestDownmix(t *testing.T) {
	tests := []struct {
		name     string
		in       []float32
		channels uint32
		want     []float32
	}{
		{"mono unchanged", []float32{1, 2, 3}, 1, []float32{1, 2, 3}},
		{"stereo", []float32{1, 3, -1, 1}, 2, []float32{2, 0}},
		{"partial frame dropped", []float32{1, 1, 1}, 2, []float32{1}},
		{"empty", nil, 2, []float32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downmix(tt.in, tt.channels)
			if len(got) != len(tt.want) {
				t.Fatalf("Downmix() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Downmix()[%d] = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}
