package note

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects the order notes are listed in.
type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortAlpha  SortMode = "alpha"
	SortLength SortMode = "length"
)

// ParseSortMode validates a sort mode name. An empty name means newest.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortAlpha, SortLength:
		return m, nil
	default:
		return "", fmt.Errorf("note: sort mode must be newest, oldest, alpha, or length, got %q", s)
	}
}

// Sort returns a sorted copy of notes. Unknown modes sort newest first.
func Sort(notes []Note, mode SortMode) []Note {
	out := append([]Note(nil), notes...)

	switch mode {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortAlpha:
		// Collator is not safe for concurrent use; build one per call.
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(strings.ToLower(out[i].Title()), strings.ToLower(out[j].Title())) < 0
		})
	case SortLength:
		sort.SliceStable(out, func(i, j int) bool {
			return utf8.RuneCountInString(out[i].Transcript) > utf8.RuneCountInString(out[j].Transcript)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}
