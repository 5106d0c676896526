package transcriber

import (
	"strings"

	"github.com/clipperhouse/uax29/sentences"
	"golang.org/x/text/language"
)

// terminalPunct returns the set of sentence-terminal punctuation runes
// for the given locale.
func terminalPunct(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "zh", "ja":
		return ".!?…。！？"
	default:
		return ".!?…"
	}
}

// isNewlineCommand reports whether a sentence is the spoken "new line"
// command: the phrase (case-insensitive, with or without the space)
// followed immediately by terminal punctuation.
func isNewlineCommand(sentence, punct string) bool {
	last, size := lastRune(sentence)
	if size == 0 || !strings.ContainsRune(punct, last) {
		return false
	}
	phrase := sentence[:len(sentence)-size]
	return strings.EqualFold(phrase, "new line") || strings.EqualFold(phrase, "newline")
}

func lastRune(s string) (rune, int) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i]&0xC0 != 0x80 { // not a UTF-8 continuation byte
			r := []rune(s[i:])
			return r[0], len(s) - i
		}
	}
	return 0, 0
}

// TransformFinal applies the voice-command pipeline to a final
// transcript: the text is split into sentence units with UAX #29
// segmentation, sentences that are the "new line" command become a
// paragraph break, and the units are rejoined with single spaces. This
// lets the recognition vocabulary hint double as an editing command.
func TransformFinal(text string, tag language.Tag) string {
	punct := terminalPunct(tag)

	var units []string
	seg := sentences.NewSegmenter([]byte(text))
	for seg.Next() {
		unit := strings.TrimSpace(string(seg.Bytes()))
		if unit == "" {
			continue
		}
		if isNewlineCommand(unit, punct) {
			units = append(units, "\n\n")
			continue
		}
		units = append(units, unit)
	}

	return strings.Join(units, " ")
}
