package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chaz8081/notepulse/internal/capture"
	"github.com/chaz8081/notepulse/internal/config"
	"github.com/chaz8081/notepulse/internal/note"
	"github.com/chaz8081/notepulse/internal/store"
)

// run executes the command tree against a config rooted in dataDir.
func run(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("data_dir: "+dataDir+"\nlog_level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func seed(t *testing.T, dataDir string, notes ...note.Note) {
	t.Helper()
	s := store.Open(filepath.Join(dataDir, "notes.json"))
	if err := s.Overwrite(notes); err != nil {
		t.Fatal(err)
	}
}

func TestListEmpty(t *testing.T) {
	out, err := run(t, t.TempDir(), "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No notes yet") {
		t.Errorf("output = %q, want empty-state message", out)
	}
}

func TestListSorted(t *testing.T) {
	dir := t.TempDir()
	older := note.New("Apples are red.", nil, "")
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := note.New("Bananas are yellow.", nil, "")
	newer.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	seed(t, dir, newer, older)

	out, err := run(t, dir, "", "list", "--sort", "oldest")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	a, b := strings.Index(out, "Apples"), strings.Index(out, "Bananas")
	if a < 0 || b < 0 || a > b {
		t.Errorf("oldest first expected, got:\n%s", out)
	}
}

func TestListBadSort(t *testing.T) {
	if _, err := run(t, t.TempDir(), "", "list", "--sort", "random"); err == nil {
		t.Fatal("expected error for unknown sort mode")
	}
}

func TestListFull(t *testing.T) {
	dir := t.TempDir()
	n := note.New("Call the bank. Then buy milk.", []string{"Call the bank."}, "/tmp/a.wav")
	seed(t, dir, n)

	out, err := run(t, dir, "", "list", "--full")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"  - Call the bank.", "Then buy milk.", "Audio: /tmp/a.wav"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowAndDelete(t *testing.T) {
	dir := t.TempDir()
	n := note.New("Water the plants today.", nil, "")
	seed(t, dir, n)

	out, err := run(t, dir, "", "show", n.ID[:6])
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Water the plants today.") {
		t.Errorf("show output = %q", out)
	}

	if _, err := run(t, dir, "", "delete", n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, dir, "", "show", n.ID); err == nil {
		t.Fatal("show after delete should fail")
	}
}

func TestSummarizeStdin(t *testing.T) {
	text := "The budget review is Monday. The budget needs the budget numbers. It rained."
	out, err := run(t, t.TempDir(), text, "summarize", "-", "--points", "1")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got, want := strings.TrimSpace(out), "- The budget needs the budget numbers."; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSummarizeFileAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.txt")
	if err := os.WriteFile(path, []byte("One. Two! Three?"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, t.TempDir(), "", "summarize", path, "--all")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	for _, want := range []string{"1. One.", "2. Two!", "3. Three?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	out, err := run(t, t.TempDir(), "   ", "summarize")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(out, "Nothing to summarize") {
		t.Errorf("output = %q", out)
	}
}

func TestResummarize(t *testing.T) {
	notes := []note.Note{
		{ID: "a", Transcript: "Fix the sink. Fix the sink pipe.", Summary: []string{}},
		{ID: "b", Transcript: "Keep me.", Summary: []string{"custom"}},
	}

	if got := resummarize(notes, 1, false); got != 1 {
		t.Errorf("changed = %d, want 1", got)
	}
	if len(notes[0].Summary) != 1 {
		t.Errorf("note a summary = %v, want one point", notes[0].Summary)
	}
	if notes[1].Summary[0] != "custom" {
		t.Errorf("note b summary overwritten without force: %v", notes[1].Summary)
	}

	if got := resummarize(notes, 1, true); got != 2 {
		t.Errorf("forced changed = %d, want 2", got)
	}
	if notes[1].Summary[0] != "Keep me." {
		t.Errorf("note b summary = %v after force", notes[1].Summary)
	}
}

func TestResummarizeCommand(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, note.Note{ID: "x", Transcript: "Plan the trip.", Summary: []string{}})

	out, err := run(t, dir, "", "resummarize")
	if err != nil {
		t.Fatalf("resummarize: %v", err)
	}
	if !strings.Contains(out, "Updated 1 of 1") {
		t.Errorf("output = %q", out)
	}

	got := store.Open(filepath.Join(dir, "notes.json")).Load()
	if len(got) != 1 || len(got[0].Summary) != 1 || got[0].Summary[0] != "Plan the trip." {
		t.Errorf("stored notes = %+v", got)
	}

	out, err = run(t, dir, "", "resummarize")
	if err != nil {
		t.Fatalf("resummarize: %v", err)
	}
	if !strings.Contains(out, "already have summaries") {
		t.Errorf("second run output = %q", out)
	}
}

func TestSaveTake(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	a := &app{cfg: cfg, store: store.Open(cfg.NotesPath())}

	res := capture.Result{
		Transcript: "Remember the dentist. Dentist at noon.",
		Summary:    []string{"Dentist at noon."},
		Samples:    make([]float32, 1600),
	}
	n, err := a.saveTake(res)
	if err != nil {
		t.Fatalf("saveTake: %v", err)
	}

	want := filepath.Join(dir, "audio", n.ID+".wav")
	if n.AudioPath() != want {
		t.Errorf("AudioPath = %q, want %q", n.AudioPath(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("recording not written: %v", err)
	}

	saved := a.store.Load()
	if len(saved) != 1 || saved[0].ID != n.ID {
		t.Fatalf("stored notes = %+v", saved)
	}
	if saved[0].Summary[0] != "Dentist at noon." {
		t.Errorf("Summary = %v", saved[0].Summary)
	}
}

func TestSaveTakeWithoutRecording(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Audio.KeepRecordings = false
	a := &app{cfg: cfg, store: store.Open(cfg.NotesPath())}

	n, err := a.saveTake(capture.Result{Transcript: "Short note here.", Samples: make([]float32, 10)})
	if err != nil {
		t.Fatalf("saveTake: %v", err)
	}
	if n.Audio != nil {
		t.Errorf("Audio = %q, want nil", *n.Audio)
	}
	if len(n.Summary) == 0 {
		t.Error("summary should be computed when the take has none")
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "list"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestConfigInit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(config.DefaultConfigPath()); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("second config init: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("output = %q", out.String())
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q", got)
	}
}

func TestInjectUnknownNote(t *testing.T) {
	if _, err := run(t, t.TempDir(), "", "inject", "missing", "--delay", "0s"); err == nil {
		t.Fatal("expected error for unknown note id")
	}
}

func TestConfigInitHonorsConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	flagPath := filepath.Join(t.TempDir(), "flag.yaml")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", flagPath, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init --config: %v", err)
	}
	if _, err := os.Stat(flagPath); err != nil {
		t.Errorf("config not written to --config path: %v", err)
	}

	envPath := filepath.Join(t.TempDir(), "env.yaml")
	t.Setenv(config.EnvConfigPath, envPath)
	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init with env: %v", err)
	}
	if _, err := os.Stat(envPath); err != nil {
		t.Errorf("config not written to $%s path: %v", config.EnvConfigPath, err)
	}
	if _, err := os.Stat(config.DefaultConfigPath()); !os.IsNotExist(err) {
		t.Errorf("default config path should be untouched, stat err = %v", err)
	}
}

func TestInjectMethod(t *testing.T) {
	tests := []struct {
		flag, configured string
		want             string
		wantErr          bool
	}{
		{"", "none", "type", false},
		{"", "paste", "paste", false},
		{"type", "paste", "type", false},
		{"paste", "none", "paste", false},
		{"bogus", "none", "", true},
		{"none", "type", "", true},
	}
	for _, tt := range tests {
		got, err := injectMethod(tt.flag, tt.configured)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("injectMethod(%q, %q) = %q, %v; want %q, wantErr %v",
				tt.flag, tt.configured, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestInjectRejectsUnknownMethod(t *testing.T) {
	dir := t.TempDir()
	n := note.New("Email the landlord.", nil, "")
	seed(t, dir, n)

	_, err := run(t, dir, "", "inject", n.ID, "--method", "bogus", "--delay", "0s")
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("inject --method bogus error = %v, want method error", err)
	}
}
