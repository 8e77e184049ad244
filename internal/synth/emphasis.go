package synth

import (
	"strings"
	"unicode"
)

// shapeEmphasis uppercases the first occurrence of each emphasis token as a
// whole word, case-insensitively, preserving surrounding punctuation and
// spacing. It never changes token count, so timing derived from the
// original text (word counts, sentence_end) still applies to the shaped
// text handed to the model.
func shapeEmphasis(text string, emphasis []string) string {
	for _, token := range emphasis {
		text = upperFirstWholeWord(text, token)
	}
	return text
}

func upperFirstWholeWord(text, token string) string {
	if token == "" {
		return text
	}
	lowerText := strings.ToLower(text)
	lowerToken := strings.ToLower(token)

	idx := 0
	for {
		pos := strings.Index(lowerText[idx:], lowerToken)
		if pos < 0 {
			return text
		}
		start := idx + pos
		end := start + len(token)

		beforeOK := start == 0 || !isWordRune(rune(lowerText[start-1]))
		afterOK := end >= len(lowerText) || !isWordRune(rune(lowerText[end]))

		if beforeOK && afterOK {
			return text[:start] + strings.ToUpper(text[start:end]) + text[end:]
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
