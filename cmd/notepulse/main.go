package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/config"
	"github.com/chaz8081/notepulse/internal/note"
	"github.com/chaz8081/notepulse/internal/store"
)

func main() {
	if err := execute(newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every command once the config is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	store      *store.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "notepulse",
		Short:         "Record voice notes and keep their highlights",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is fine.
			_ = godotenv.Load()
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default: $NOTEPULSE_CONFIG or ~/.config/notepulse/config.yaml)")

	root.AddCommand(
		a.recordCmd(),
		a.listCmd(),
		a.showCmd(),
		a.deleteCmd(),
		a.summarizeCmd(),
		a.resummarizeCmd(),
		a.transcribeCmd(),
		a.watchCmd(),
		a.modelsCmd(),
		a.hotkeyCmd(),
		a.injectCmd(),
		a.configCmd(),
	)
	return root
}

// execute runs the command tree and prints the error, if any, to stderr.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// setup loads the config, installs the default logger and opens the store.
func (a *app) setup() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	a.cfg = cfg
	a.store = store.Open(cfg.NotesPath())
	slog.Debug("notes store", "path", a.store.Path())
	return nil
}

// loadConfig reads the explicit --config path, which must exist, or falls
// back to $NOTEPULSE_CONFIG, the default path, and finally built-in
// defaults.
func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return cfg, nil
	}

	path := config.ResolvePath("")
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}
	if !found {
		slog.Debug("no config file found, using defaults", "path", path)
	}
	return cfg, nil
}

// printNote writes a note's local time, short id and highlights. full adds
// the transcript and the recording path.
func printNote(out io.Writer, n note.Note, full bool) {
	fmt.Fprintf(out, "%s  %s\n", n.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM"), shortID(n.ID))
	for _, line := range n.Highlights() {
		fmt.Fprintf(out, "  - %s\n", line)
	}
	if !full {
		return
	}
	if n.Transcript != "" {
		fmt.Fprintf(out, "\n  %s\n", n.Transcript)
	}
	if p := n.AudioPath(); p != "" {
		fmt.Fprintf(out, "\n  Audio: %s\n", p)
	}
}

func printBullets(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printBanner displays the recording configuration summary.
func printBanner(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "=== notepulse ===")
	fmt.Fprintf(out, "  Model:   %s\n", cfg.Transcribe.ModelPath)
	fmt.Fprintf(out, "  Hotkey:  %s (%s mode)\n", strings.Join(cfg.Hotkey.Keys, "+"), cfg.Hotkey.Mode)
	fmt.Fprintf(out, "  Audio:   %dHz, %dch\n", cfg.Audio.SampleRate, cfg.Audio.Channels)
	fmt.Fprintf(out, "  Live:    every %s\n", cfg.Live.Interval)
	fmt.Fprintf(out, "  Inject:  %s\n", cfg.Inject.Method)
	fmt.Fprintf(out, "  Notes:   %s\n", cfg.NotesPath())
	fmt.Fprintln(out, "=================")
}
