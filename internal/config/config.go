package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names an alternative config file when --config is not set.
const EnvConfigPath = "NOTEPULSE_CONFIG"

// Config holds all application configuration.
type Config struct {
	DataDir    string           `yaml:"data_dir"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Hotkey     HotkeyConfig     `yaml:"hotkey"`
	Audio      AudioConfig      `yaml:"audio"`
	Live       LiveConfig       `yaml:"live"`
	Summary    SummaryConfig    `yaml:"summary"`
	Inject     InjectConfig     `yaml:"inject"`
	Watch      WatchConfig      `yaml:"watch"`
	LogLevel   string           `yaml:"log_level"`
}

// TranscribeConfig selects the speech-to-text backend.
type TranscribeConfig struct {
	Backend   string `yaml:"backend"` // "whisper"
	ModelPath string `yaml:"model_path"`
}

// HotkeyConfig holds hotkey-related settings.
type HotkeyConfig struct {
	Keys []string `yaml:"keys"`
	Mode string   `yaml:"mode"` // "hold" or "toggle"
}

// AudioConfig holds audio capture settings.
type AudioConfig struct {
	SampleRate     uint32 `yaml:"sample_rate"`
	Channels       uint32 `yaml:"channels"`
	KeepRecordings bool   `yaml:"keep_recordings"`
}

// LiveConfig controls transcription while a note is being recorded.
type LiveConfig struct {
	Interval time.Duration `yaml:"interval"`
	MinChunk time.Duration `yaml:"min_chunk"`
}

// SummaryConfig controls the extractive summary.
type SummaryConfig struct {
	MaxPoints int `yaml:"max_points"`
}

// InjectConfig controls delivery of a saved note's summary.
type InjectConfig struct {
	Method string `yaml:"method"` // "none", "type" or "paste"
}

// WatchConfig configures the transcript inbox watcher.
type WatchConfig struct {
	InboxDir      string `yaml:"inbox_dir"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "notepulse")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultDataDir returns where notes, recordings and models live.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "notepulse")
}

// DefaultModelsDir returns the directory models are downloaded into.
func DefaultModelsDir() string {
	return filepath.Join(DefaultDataDir(), "models")
}

// ResolvePath picks the config file to load: the explicit path, then
// $NOTEPULSE_CONFIG, then the default path.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return expandTilde(env)
	}
	return DefaultConfigPath()
}

// Default returns a Config with sensible default values.
func Default() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		DataDir: dataDir,
		Transcribe: TranscribeConfig{
			Backend:   "whisper",
			ModelPath: filepath.Join(DefaultModelsDir(), "ggml-base.en.bin"),
		},
		Hotkey: HotkeyConfig{
			Keys: []string{"ctrl", "shift", "n"},
			Mode: "toggle",
		},
		Audio: AudioConfig{
			SampleRate:     16000,
			Channels:       1,
			KeepRecordings: true,
		},
		Live: LiveConfig{
			Interval: 3 * time.Second,
			MinChunk: time.Second,
		},
		Summary: SummaryConfig{
			MaxPoints: 3,
		},
		Inject: InjectConfig{
			Method: "none",
		},
		Watch: WatchConfig{
			InboxDir:      filepath.Join(dataDir, "inbox"),
			MaxConcurrent: 2,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields keep their
// defaults and a leading ~ in path fields is expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.DataDir = expandTilde(cfg.DataDir)
	cfg.Transcribe.ModelPath = expandTilde(cfg.Transcribe.ModelPath)
	cfg.Watch.InboxDir = expandTilde(cfg.Watch.InboxDir)
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default when
// it does not. The bool reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// NotesPath is the JSON file notes are stored in.
func (c *Config) NotesPath() string {
	return filepath.Join(c.DataDir, "notes.json")
}

// RecordingsDir is where WAV recordings are written.
func (c *Config) RecordingsDir() string {
	return filepath.Join(c.DataDir, "audio")
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}

	switch c.Transcribe.Backend {
	case "whisper", "":
		if c.Transcribe.ModelPath == "" {
			return fmt.Errorf("transcribe.model_path must not be empty for whisper backend")
		}
	default:
		return fmt.Errorf("transcribe.backend must be \"whisper\", got %q", c.Transcribe.Backend)
	}

	if len(c.Hotkey.Keys) == 0 {
		return fmt.Errorf("hotkey.keys must not be empty")
	}
	switch c.Hotkey.Mode {
	case "hold", "toggle":
	default:
		return fmt.Errorf("hotkey.mode must be \"hold\" or \"toggle\", got %q", c.Hotkey.Mode)
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}
	if c.Audio.Channels == 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}
	if (c.Transcribe.Backend == "whisper" || c.Transcribe.Backend == "") && c.Audio.SampleRate != 16000 {
		return fmt.Errorf("audio.sample_rate must be 16000 for whisper backend, got %d", c.Audio.SampleRate)
	}

	if c.Live.Interval <= 0 {
		return fmt.Errorf("live.interval must be > 0")
	}
	if c.Live.MinChunk < 0 {
		return fmt.Errorf("live.min_chunk must not be negative")
	}

	if c.Summary.MaxPoints <= 0 {
		return fmt.Errorf("summary.max_points must be > 0")
	}

	switch c.Inject.Method {
	case "none", "type", "paste":
	default:
		return fmt.Errorf("inject.method must be \"none\", \"type\", or \"paste\", got %q", c.Inject.Method)
	}

	if c.Watch.MaxConcurrent <= 0 {
		return fmt.Errorf("watch.max_concurrent must be > 0")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a log_level value to a slog level. Unknown values
// map to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultHeader = `# notepulse configuration
#
# hotkey.mode: "toggle" (press to start, press again to stop) or "hold"
# live.interval: how often the live transcript is refreshed while recording
# inject.method: "none", "type" or "paste" the summary after saving a note
# log_level: debug, info, warn, error

`

// WriteDefault writes the default config to path. It returns the written
// path, or "" when a config file already exists there.
func WriteDefault(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
