// Package summarize extracts highlight sentences from a transcript.
//
// Sentences are ranked by the mean in-sentence frequency of their
// non-stopword tokens, and the top-ranked ones are returned in the order
// they were spoken.
package summarize

import (
	"sort"
	"strings"
)

// DefaultMaxPoints is the number of highlights produced by Summarize.
const DefaultMaxPoints = 3

// Summarize returns up to DefaultMaxPoints highlight sentences from text.
func Summarize(text string) []string {
	return SummarizeN(text, DefaultMaxPoints)
}

// SummarizeN returns up to maxPoints sentences from text, in original order.
// When text holds maxPoints sentences or fewer, all of them are returned
// without ranking. A maxPoints of zero or less yields no sentences.
func SummarizeN(text string, maxPoints int) []string {
	sentences := Sentences(text)
	if len(sentences) == 0 || maxPoints <= 0 {
		return []string{}
	}
	if len(sentences) <= maxPoints {
		return sentences
	}

	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		ranked[i] = scored{index: i, score: score(tokenize(s))}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})

	top := ranked[:maxPoints]
	sort.Slice(top, func(i, j int) bool { return top[i].index < top[j].index })

	out := make([]string, len(top))
	for i, s := range top {
		out[i] = sentences[s.index]
	}
	return out
}

type scored struct {
	index int
	score float64
}

// Sentences collapses whitespace in text and splits it after every '.', '!'
// or '?' that is followed by a space. Empty pieces are dropped.
func Sentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return []string{}
	}

	var out []string
	start := 0
	for i := 0; i < len(normalized)-1; i++ {
		if isTerminal(normalized[i]) && normalized[i+1] == ' ' {
			if s := strings.TrimSpace(normalized[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 2
		}
	}
	if start < len(normalized) {
		if s := strings.TrimSpace(normalized[start:]); s != "" {
			out = append(out, s)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// tokenize lowercases s, keeps only [a-z0-9] and spaces, and drops stopwords.
func tokenize(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			return r
		}
		return -1
	}, strings.ToLower(s))

	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, f := range fields {
		if !isStopword(f) {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// score is the mean, over every token occurrence, of that token's count
// within the same sentence. Zero tokens score 0.
func score(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	sum := 0
	for _, t := range tokens {
		sum += counts[t]
	}
	return float64(sum) / float64(len(tokens))
}
