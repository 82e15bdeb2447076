// Package textnorm cleans OCR text tokens before they are placed on a
// page: Unicode NFKC normalization, zero-width character removal,
// whitespace collapsing, optional CJK spacing collapse, and line
// dehyphenation.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var zeroWidthReplacer = strings.NewReplacer(
	"\u200b", " ", // zero-width space becomes an ordinary space
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
)

// Normalize applies NFKC normalization and zero-width stripping to an OCR
// token. When keepSpaces is false, whitespace runs (including newlines)
// collapse to single spaces and the result is trimmed. When cjkJoin is
// true, whitespace sitting between two CJK ideographs is removed.
// Empty input yields empty output.
func Normalize(text string, keepSpaces, cjkJoin bool) string {
	normalized := zeroWidthReplacer.Replace(norm.NFKC.String(text))
	if !keepSpaces {
		normalized = strings.Join(strings.Fields(normalized), " ")
	}
	if cjkJoin {
		normalized = trimCJKSpaces(normalized)
	}
	return normalized
}

// IsCJK reports whether r is a CJK ideograph: Unified Ideographs,
// Extension A, Extensions B through D, or Compatibility Ideographs.
func IsCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF)
}

// trimCJKSpaces drops whitespace whose immediate neighbors are both CJK
// ideographs. Whitespace adjacent to non-CJK text is preserved.
func trimCJKSpaces(text string) string {
	if text == "" {
		return text
	}
	runes := []rune(text)
	var sb strings.Builder
	sb.Grow(len(text))
	for i, r := range runes {
		if unicode.IsSpace(r) && i > 0 && i+1 < len(runes) &&
			IsCJK(runes[i-1]) && IsCJK(runes[i+1]) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Dehyphenize joins hyphenated line endings: when an accumulated line
// ends with "-" and the next non-blank line starts with a lowercase
// letter, the hyphen is dropped and the lines concatenate directly.
// A blank line flushes the buffer and emits a blank placeholder.
//
// The transformation is lossy in entry count: each merge collapses two
// input lines into one output line. Callers pairing the result with a
// parallel bounding-box slice must collapse merged pairs onto the first
// box; index correspondence does not otherwise survive.
func Dehyphenize(lines []string) []string {
	result := make([]string, 0, len(lines))
	var buffer string
	for _, line := range lines {
		segment := strings.TrimSpace(line)
		if segment == "" {
			if buffer != "" {
				result = append(result, buffer)
				buffer = ""
			}
			result = append(result, "")
			continue
		}
		if strings.HasSuffix(buffer, "-") && startsLower(segment) {
			buffer = buffer[:len(buffer)-1] + segment
			continue
		}
		if buffer != "" {
			result = append(result, buffer)
		}
		buffer = segment
	}
	if buffer != "" {
		result = append(result, buffer)
	}
	return result
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}
