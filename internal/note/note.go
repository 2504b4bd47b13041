// Package note defines the saved voice-note record and how notes are
// ordered for browsing.
package note

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chaz8081/notepulse/internal/summarize"
)

// Note is a saved voice note. The JSON shape is the on-disk format.
type Note struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Transcript string    `json:"transcript"`
	Summary    []string  `json:"summary"`
	Audio      *string   `json:"audio"` // path to the WAV recording, or null
}

// New builds a note for transcript. If summary is empty the transcript is
// summarized here. An empty audio path is stored as null.
func New(transcript string, summary []string, audio string) Note {
	transcript = strings.TrimSpace(transcript)
	if len(summary) == 0 {
		summary = summarize.Summarize(transcript)
	}

	n := Note{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
		Transcript: transcript,
		Summary:    append([]string(nil), summary...),
	}
	if n.Summary == nil {
		n.Summary = []string{}
	}
	if audio != "" {
		n.Audio = &audio
	}
	return n
}

// Highlights returns the stored summary, or a fresh summary of the
// transcript for notes saved without one.
func (n Note) Highlights() []string {
	if len(n.Summary) > 0 {
		return n.Summary
	}
	return summarize.Summarize(n.Transcript)
}

// Title is the first summary line, falling back to the transcript.
func (n Note) Title() string {
	if len(n.Summary) > 0 && n.Summary[0] != "" {
		return n.Summary[0]
	}
	return n.Transcript
}

// AudioPath returns the recording path, or "" when there is none.
func (n Note) AudioPath() string {
	if n.Audio == nil {
		return ""
	}
	return *n.Audio
}
