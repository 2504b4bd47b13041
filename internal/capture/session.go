// Package capture runs a recording session: it pulls audio from a
// recorder, transcribes it in chunks while recording, and keeps a live
// extractive summary of the growing transcript.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chaz8081/notepulse/internal/audio"
	"github.com/chaz8081/notepulse/internal/summarize"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is recording.
	ErrAlreadyRunning = errors.New("capture: session already running")
	// ErrNotRunning is returned by Stop when no session is recording.
	ErrNotRunning = errors.New("capture: session not running")
)

// Recorder is the audio source. Drain returns samples captured since the
// previous Drain and must keep working after Stop so the tail of the take
// can be collected.
type Recorder interface {
	Start() error
	Drain() []float32
	Stop() []float32
}

// Transcriber turns mono samples into text.
type Transcriber interface {
	Process(samples []float32) (string, error)
}

// Options configures a Session.
type Options struct {
	SampleRate uint32
	Channels   uint32
	Interval   time.Duration // how often pending audio is checked
	MinChunk   time.Duration // shortest chunk transcribed while live
	MaxPoints  int           // summary length
}

// Update is published whenever the live transcript changes.
type Update struct {
	Transcript string
	Summary    []string
}

// Result is what a finished session produced.
type Result struct {
	Transcript string
	Summary    []string
	Samples    []float32 // the full take, interleaved as recorded
}

// HasContent reports whether the transcript is worth saving.
func (r Result) HasContent() bool {
	return len(strings.TrimSpace(r.Transcript)) > 3
}

// Session records one note at a time. Start and Stop may be called from
// different goroutines.
type Session struct {
	rec  Recorder
	tr   Transcriber
	opts Options

	mu         sync.Mutex
	running    bool
	stopping   bool
	transcript Transcript
	summary    []string
	pending    []float32
	updates    chan Update
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewSession creates a Session. Zero option values fall back to 16kHz mono,
// a 3s interval, a 1s minimum chunk and summarize.DefaultMaxPoints.
func NewSession(rec Recorder, tr Transcriber, opts Options) *Session {
	if opts.SampleRate == 0 {
		opts.SampleRate = 16000
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = 3 * time.Second
	}
	if opts.MinChunk < 0 {
		opts.MinChunk = 0
	}
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = summarize.DefaultMaxPoints
	}
	return &Session{rec: rec, tr: tr, opts: opts}
}

// Start begins recording and live transcription. Updates for this take are
// delivered on the channel returned by Updates, starting with an empty one.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.stopping {
		return ErrAlreadyRunning
	}
	if err := s.rec.Start(); err != nil {
		return fmt.Errorf("capture: start recorder: %w", err)
	}

	s.transcript.Reset()
	s.summary = []string{}
	s.pending = nil
	s.updates = make(chan Update, 16)
	s.done = make(chan struct{})
	s.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.publish(Update{Summary: []string{}})
	go s.loop(loopCtx, s.done)
	return nil
}

// Updates returns the channel for the current take. It is closed by Stop.
// Updates are dropped rather than blocking when the reader falls behind.
func (s *Session) Updates() <-chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// Running reports whether a take is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop ends the take. Audio not yet transcribed is transcribed regardless
// of MinChunk. A failure there is returned along with everything
// transcribed before it. Only the first of concurrent Stop calls does the
// work; the others get ErrNotRunning.
func (s *Session) Stop() (Result, error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return Result{}, ErrNotRunning
	}
	s.running = false
	s.stopping = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	all := s.rec.Stop()
	rest := s.rec.Drain()

	s.mu.Lock()
	chunk := append(s.pending, rest...)
	s.pending = nil
	s.mu.Unlock()

	var flushErr error
	text := ""
	if len(chunk) > 0 {
		var err error
		text, err = s.transcribe(chunk)
		if err != nil {
			flushErr = fmt.Errorf("capture: transcribe final chunk: %w", err)
			text = ""
		}
	}
	s.apply(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.updates)
	s.stopping = false
	return Result{
		Transcript: s.transcript.String(),
		Summary:    append([]string{}, s.summary...),
		Samples:    all,
	}, flushErr
}

func (s *Session) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick moves newly captured audio into the pending chunk and transcribes
// it once it is at least MinChunk long.
func (s *Session) tick() {
	fresh := s.rec.Drain()

	s.mu.Lock()
	s.pending = append(s.pending, fresh...)
	if s.duration(len(s.pending)) < s.opts.MinChunk || len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	chunk := s.pending
	s.pending = nil
	s.mu.Unlock()

	text, err := s.transcribe(chunk)
	if err != nil {
		slog.Warn("live transcription failed, dropping chunk", "error", err, "samples", len(chunk))
		return
	}
	if text == "" {
		slog.Debug("no speech in chunk", "duration", s.duration(len(chunk)))
		return
	}
	s.apply(text)
}

func (s *Session) transcribe(chunk []float32) (string, error) {
	start := time.Now()
	text, err := s.tr.Process(audio.Downmix(chunk, s.opts.Channels))
	if err != nil {
		return "", err
	}
	slog.Debug("transcribed chunk", "duration", s.duration(len(chunk)), "elapsed", time.Since(start).Round(time.Millisecond))
	return strings.TrimSpace(text), nil
}

// apply appends text to the transcript, re-summarizes and publishes.
func (s *Session) apply(text string) {
	s.mu.Lock()
	if text != "" {
		s.transcript.Append(text)
	}
	s.summary = summarize.SummarizeN(s.transcript.String(), s.opts.MaxPoints)
	u := Update{Transcript: s.transcript.String(), Summary: append([]string{}, s.summary...)}
	s.mu.Unlock()

	s.publish(u)
}

func (s *Session) publish(u Update) {
	select {
	case s.updates <- u:
	default:
		slog.Debug("dropping live update, reader is behind")
	}
}

func (s *Session) duration(samples int) time.Duration {
	frames := samples / int(s.opts.Channels)
	return time.Duration(frames) * time.Second / time.Duration(s.opts.SampleRate)
}
