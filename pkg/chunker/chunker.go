// Package chunker splits long transcripts into pieces small enough for a
// single translation call.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxRunes bounds one chunk when the caller passes a non-positive limit.
const DefaultMaxRunes = 2000

// Split breaks text into chunks of at most maxRunes runes. Chunks end on a
// sentence boundary when one fits, otherwise on whitespace, otherwise mid-word.
// Joining the chunks with a single space restores the text modulo whitespace.
func Split(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentRunes := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentRunes = 0
	}

	for _, sentence := range Sentences(text) {
		n := utf8.RuneCountInString(sentence)
		if n > maxRunes {
			flush()
			chunks = append(chunks, splitWords(sentence, maxRunes)...)
			continue
		}
		sep := 0
		if currentRunes > 0 {
			sep = 1
		}
		if currentRunes+sep+n > maxRunes {
			flush()
			sep = 0
		}
		if sep == 1 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
		currentRunes += sep + n
	}
	flush()

	return chunks
}

// Sentences splits text after '.', '!', '?' and their CJK equivalents when
// followed by whitespace or end of text. Returned sentences are trimmed.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if !isTerminal(r) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) && !isWide(r) {
			continue
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '।':
		return true
	}
	return false
}

// Full-width terminals are not followed by a space in CJK text.
func isWide(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func splitWords(sentence string, maxRunes int) []string {
	var out []string
	var current strings.Builder
	currentRunes := 0

	for _, word := range strings.Fields(sentence) {
		n := utf8.RuneCountInString(word)
		for n > maxRunes {
			if currentRunes > 0 {
				out = append(out, current.String())
				current.Reset()
				currentRunes = 0
			}
			rs := []rune(word)
			out = append(out, string(rs[:maxRunes]))
			word = string(rs[maxRunes:])
			n -= maxRunes
		}
		if n == 0 {
			continue
		}
		sep := 0
		if currentRunes > 0 {
			sep = 1
		}
		if currentRunes+sep+n > maxRunes {
			out = append(out, current.String())
			current.Reset()
			currentRunes = 0
			sep = 0
		}
		if sep == 1 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
		currentRunes += sep + n
	}
	if currentRunes > 0 {
		out = append(out, current.String())
	}
	return out
}
