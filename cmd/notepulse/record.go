package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/audio"
	"github.com/chaz8081/notepulse/internal/capture"
	"github.com/chaz8081/notepulse/internal/hotkey"
	"github.com/chaz8081/notepulse/internal/inject"
	"github.com/chaz8081/notepulse/internal/note"
	"github.com/chaz8081/notepulse/internal/transcribe"
)

func (a *app) recordCmd() *cobra.Command {
	var length time.Duration
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record voice notes with live transcription and highlights",
		Long: `Loads the whisper model and waits for the hotkey. Each press starts or
stops a note. With --for, records a single note of that length instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.record(cmd.OutOrStdout(), length)
		},
	}
	cmd.Flags().DurationVar(&length, "for", 0, "record one note for this long instead of waiting for the hotkey")
	return cmd
}

func (a *app) record(out io.Writer, length time.Duration) error {
	cfg := a.cfg
	printBanner(out, cfg)

	slog.Info("loading whisper model", "path", cfg.Transcribe.ModelPath)
	modelStart := time.Now()
	tr, err := transcribe.New(&cfg.Transcribe)
	if err != nil {
		return fmt.Errorf("%w\n\nRun 'notepulse models download' to fetch the model", err)
	}
	defer tr.Close()
	slog.Info("model loaded", "elapsed", time.Since(modelStart).Round(time.Millisecond))

	rec, err := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		return fmt.Errorf("%w\n\nEnsure microphone access is granted to this terminal", err)
	}
	defer rec.Close()

	sess := capture.NewSession(rec, tr, capture.Options{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Interval:   cfg.Live.Interval,
		MinChunk:   cfg.Live.MinChunk,
		MaxPoints:  cfg.Summary.MaxPoints,
	})
	inj := inject.NewInjector(cfg.Inject.Method)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if length > 0 {
		return a.recordFor(ctx, out, sess, inj, length)
	}
	return a.recordWithHotkey(ctx, out, sess, inj)
}

// recordFor records a single note of the given length, or until ctx ends.
func (a *app) recordFor(ctx context.Context, out io.Writer, sess *capture.Session, inj *inject.Injector, length time.Duration) error {
	if err := sess.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Recording for %s...\n", length)

	timer := time.NewTimer(length)
	defer timer.Stop()

	updates := sess.Updates()
	for done := false; !done; {
		select {
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			printUpdate(out, u)
		case <-timer.C:
			done = true
		case <-ctx.Done():
			done = true
		}
	}

	a.finishTake(out, sess, inj)
	return nil
}

func (a *app) recordWithHotkey(ctx context.Context, out io.Writer, sess *capture.Session, inj *inject.Injector) error {
	keys := strings.Join(a.cfg.Hotkey.Keys, "+")
	listener := hotkey.NewListener(a.cfg.Hotkey.Keys, a.cfg.Hotkey.Mode)
	go listener.Run()
	slog.Info("hotkey listener ready", "keys", keys, "mode", a.cfg.Hotkey.Mode)

	fmt.Fprintf(out, "Ready! Press %s to record a note. Ctrl+C to quit.\n", keys)

	// The listener is never stopped: gohook's cleanup can crash on exit
	// and the OS releases the hook with the process.
	events := listener.Events()
	var updates <-chan capture.Update
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				slog.Info("hotkey listener stopped")
				if sess.Running() {
					a.finishTake(out, sess, inj)
				}
				return nil
			}
			switch ev.Type {
			case hotkey.EventStart:
				if err := sess.Start(ctx); err != nil {
					slog.Error("failed to start recording", "error", err)
					continue
				}
				updates = sess.Updates()
				fmt.Fprintln(out, "Recording...")
			case hotkey.EventStop:
				updates = nil
				a.finishTake(out, sess, inj)
			}

		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			printUpdate(out, u)

		case <-ctx.Done():
			if sess.Running() {
				a.finishTake(out, sess, inj)
			}
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
	}
}

// finishTake stops the session and saves what it heard.
func (a *app) finishTake(out io.Writer, sess *capture.Session, inj *inject.Injector) {
	res, err := sess.Stop()
	if errors.Is(err, capture.ErrNotRunning) {
		return
	}
	if err != nil {
		slog.Error("final transcription failed", "error", err)
	}

	if !res.HasContent() {
		fmt.Fprintln(out, "Nothing was transcribed, note discarded.")
		return
	}

	n, err := a.saveTake(res)
	if err != nil {
		slog.Error("failed to save note", "error", err)
		return
	}
	fmt.Fprintln(out)
	printNote(out, n, false)
	fmt.Fprintln(out, "Note saved.")

	if err := inj.InjectSummary(n.Summary); err != nil {
		slog.Error("summary injection failed", "error", err)
	}
}

// saveTake stores a finished take as a note, writing the recording next
// to it when recordings are kept.
func (a *app) saveTake(res capture.Result) (note.Note, error) {
	n := note.New(res.Transcript, res.Summary, "")

	if a.cfg.Audio.KeepRecordings && len(res.Samples) > 0 {
		path := filepath.Join(a.cfg.RecordingsDir(), n.ID+".wav")
		if err := audio.WriteWAV(path, res.Samples, a.cfg.Audio.SampleRate, a.cfg.Audio.Channels); err != nil {
			slog.Warn("failed to write recording", "path", path, "error", err)
		} else {
			n.Audio = &path
		}
	}

	if _, err := a.store.Save(n); err != nil {
		return note.Note{}, err
	}
	slog.Info("note saved", "id", n.ID, "highlights", len(n.Summary))
	return n, nil
}

func printUpdate(out io.Writer, u capture.Update) {
	if u.Transcript == "" {
		return
	}
	fmt.Fprintf(out, "\n> %s\n", u.Transcript)
	printBullets(out, u.Summary)
}
