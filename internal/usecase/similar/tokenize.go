package similar

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest token kept by Tokenize, in runes.
const MinTokenLength = 3

// stopWords are English function words plus boilerplate common to every abstract.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the a an and or but in on at to for of with by from is are was were be been
		being have has had do does did will would could should may might can this that
		these those it its we our their they which what who whom how when where than
		then also as not no nor so if each every all both such into over after before
		between under above up down out about through during
		paper propose proposed show shown using used results approach method methods
		based model models new novel`) {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether w is ignored by Tokenize.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Tokenize lowercases text, splits it on anything that is not a letter or digit,
// and drops short tokens and stop words. Output order follows the input.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLength {
			continue
		}
		if IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
