// Package models fetches the speech recognition model used for
// transcription.
package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// WhisperModelURL is where the default English whisper model lives.
const WhisperModelURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin"

// Download fetches url into dest, reporting progress to progress if it is
// not nil. An existing non-empty dest is left alone. The file is written
// to a temporary path first so an interrupted download never looks
// complete. It returns the number of bytes written.
func Download(ctx context.Context, url, dest string, progress io.Writer) (int64, error) {
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		if progress != nil {
			fmt.Fprintf(progress, "  Model already exists: %s (%.0f MB)\n", dest, mb(info.Size()))
		}
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("models: create models dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("models: build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("models: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("models: download failed: HTTP %d", resp.StatusCode)
	}

	tmpPath := dest + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("models: create temp file: %w", err)
	}

	var w io.Writer = f
	if progress != nil {
		w = &progressWriter{writer: f, out: progress, total: resp.ContentLength, label: filepath.Base(dest)}
	}

	written, err := io.Copy(w, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("models: write model file: %w", err)
	}
	if progress != nil {
		fmt.Fprintf(progress, "\n  Downloaded %.1f MB\n", mb(written))
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("models: move model file: %w", err)
	}
	return written, nil
}

// progressWriter wraps an io.Writer and prints download progress to out.
type progressWriter struct {
	writer  io.Writer
	out     io.Writer
	total   int64
	written int64
	label   string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	if pw.total > 0 {
		pct := float64(pw.written) / float64(pw.total) * 100
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB / %.1f MB (%.0f%%)",
			pw.label, mb(pw.written), mb(pw.total), pct)
	} else {
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB downloaded", pw.label, mb(pw.written))
	}
	return n, err
}

func mb(n int64) float64 {
	return float64(n) / (1024 * 1024)
}
