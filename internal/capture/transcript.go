package capture

import "strings"

// Transcript accumulates finalized speech segments.
type Transcript struct {
	final string
}

// Append adds a finalized segment, separated from earlier text by a
// single space.
func (t *Transcript) Append(segment string) {
	t.final = strings.TrimSpace(t.final + " " + segment)
}

// Reset clears the transcript.
func (t *Transcript) Reset() {
	t.final = ""
}

func (t *Transcript) String() string {
	return t.final
}
