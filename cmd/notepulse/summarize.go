package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/audio"
	"github.com/chaz8081/notepulse/internal/note"
	"github.com/chaz8081/notepulse/internal/summarize"
	"github.com/chaz8081/notepulse/internal/transcribe"
)

func (a *app) summarizeCmd() *cobra.Command {
	var (
		points int
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [FILE|-]",
		Short: "Print the highlights of a text file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if all {
				for i, s := range summarize.Sentences(text) {
					fmt.Fprintf(out, "%3d. %s\n", i+1, s)
				}
				return nil
			}

			if points <= 0 {
				points = a.cfg.Summary.MaxPoints
			}
			lines := summarize.SummarizeN(text, points)
			if len(lines) == 0 {
				fmt.Fprintln(out, "Nothing to summarize.")
				return nil
			}
			printBullets(out, lines)
			return nil
		},
	}
	cmd.Flags().IntVarP(&points, "points", "n", 0, "number of highlights (default: summary.max_points)")
	cmd.Flags().BoolVar(&all, "all", false, "print every sentence instead of the highlights")
	return cmd
}

// readText reads the named file, or stdin when no file or "-" is given.
func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

func (a *app) transcribeCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "transcribe FILE.wav",
		Short: "Transcribe and summarize a 16kHz WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transcribeFile(cmd.OutOrStdout(), args[0], save)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the result as a note")
	return cmd
}

func (a *app) transcribeFile(out io.Writer, path string, save bool) error {
	samples, rate, err := audio.ReadWAV(path)
	if err != nil {
		return err
	}
	if rate != 16000 {
		return fmt.Errorf("%s is %dHz, whisper needs 16000Hz audio", path, rate)
	}

	tr, err := transcribe.New(&a.cfg.Transcribe)
	if err != nil {
		return fmt.Errorf("%w\n\nRun 'notepulse models download' to fetch the model", err)
	}
	defer tr.Close()

	start := time.Now()
	text, err := tr.Process(samples)
	if err != nil {
		return err
	}
	slog.Info("transcribed file", "path", path, "elapsed", time.Since(start).Round(time.Millisecond))

	if text == "" {
		fmt.Fprintln(out, "No speech detected.")
		return nil
	}

	summary := summarize.SummarizeN(text, a.cfg.Summary.MaxPoints)
	fmt.Fprintln(out, text)
	fmt.Fprintln(out)
	printBullets(out, summary)

	if !save {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	n := note.New(text, summary, abs)
	if _, err := a.store.Save(n); err != nil {
		return err
	}
	fmt.Fprintf(out, "Note %s saved.\n", shortID(n.ID))
	return nil
}
