package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaz8081/notepulse/internal/note"
	"github.com/chaz8081/notepulse/internal/summarize"
)

// ImportedDir is the inbox subdirectory imported transcripts are moved to.
const ImportedDir = "imported"

// Saver persists a note.
type Saver interface {
	Save(n note.Note) ([]note.Note, error)
}

// NewImporter returns a handler that turns a transcript file into a
// summarized note, saves it, and moves the file under ImportedDir.
// Empty files are left in place.
func NewImporter(store Saver, maxPoints int) EventHandler {
	return func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("watcher: read transcript: %w", err)
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			slog.Warn("skipping empty transcript", "path", path)
			return nil
		}

		n := note.New(text, summarize.SummarizeN(text, maxPoints), "")
		if _, err := store.Save(n); err != nil {
			return fmt.Errorf("watcher: save note: %w", err)
		}

		destDir := filepath.Join(filepath.Dir(path), ImportedDir)
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return fmt.Errorf("watcher: create imported dir: %w", err)
		}
		if err := os.Rename(path, filepath.Join(destDir, filepath.Base(path))); err != nil {
			slog.Warn("failed to move imported transcript", "path", path, "error", err)
		}

		slog.Info("imported transcript", "path", path, "id", n.ID, "highlights", len(n.Summary))
		return nil
	}
}
