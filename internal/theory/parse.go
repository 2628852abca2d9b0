package theory

import "strings"

// ParsedChord is a chord symbol split into root and quality suffix.
type ParsedChord struct {
	RootIndex int    `json:"rootIndex"`
	Quality   string `json:"quality"`
	// RootToken is the matched root text with its original casing. Empty
	// when nothing matched.
	RootToken string `json:"rootToken"`
}

// Recognized reports whether a root token was matched.
func (p ParsedChord) Recognized() bool {
	return p.RootToken != ""
}

// Parse splits free text into a root and a quality suffix. Empty or
// unrecognized input yields root C with an empty quality.
func Parse(text string) ParsedChord {
	if text == "" {
		return ParsedChord{}
	}
	var first, letter *rootName
	for i := range rootNames {
		rn := &rootNames[i]
		if !hasPrefixFold(text, rn.token) {
			continue
		}
		if first == nil {
			first = rn
		}
		if !rn.solfege {
			letter = rn
			break
		}
	}
	if first == nil {
		return ParsedChord{}
	}
	chosen := first
	if letter != nil && first != letter && first.index == letter.index {
		// Fa vs F: the solfège reading needs a known suffix behind it.
		if _, ok := LookupQuality(text[len(first.token):]); !ok {
			chosen = letter
		}
	}
	n := len(chosen.token)
	if !chosen.solfege && n == 1 && len(text) > 1 && isAccidental(text[1]) {
		// Spellings outside the note table (Cb, E#) resolve by their letter.
		n = 2
	}
	return ParsedChord{
		RootIndex: chosen.index,
		Quality:   text[n:],
		RootToken: text[:n],
	}
}

func isAccidental(c byte) bool {
	return c == '#' || c == 'b' || c == 'B'
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
