// Package theory implements chord parsing, transposition and diagram inputs.
package theory

import "strings"

// Notation selects how note names are displayed.
type Notation string

const (
	// Letter renders roots as C, C#, D...
	Letter Notation = "letter"
	// Solfege renders roots as Do, Do#, Re...
	Solfege Notation = "solfege"
)

// ParseNotation maps user input to a Notation. Unknown values fall back to Letter.
func ParseNotation(s string) (Notation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "letter", "letters", "":
		return Letter, true
	case "solfege", "solfège":
		return Solfege, true
	default:
		return Letter, false
	}
}

// Note describes one of the twelve pitch classes.
type Note struct {
	Index   int    `json:"index"`
	Letter  string `json:"letter"`
	Solfege string `json:"solfege"`
	IsBlack bool   `json:"isBlack"`
}

// Name returns the note name in the requested notation.
func (n Note) Name(notation Notation) string {
	if notation == Solfege {
		return n.Solfege
	}
	return n.Letter
}

var notes = [12]Note{
	{Index: 0, Letter: "C", Solfege: "Do"},
	{Index: 1, Letter: "C#", Solfege: "Do#", IsBlack: true},
	{Index: 2, Letter: "D", Solfege: "Re"},
	{Index: 3, Letter: "D#", Solfege: "Re#", IsBlack: true},
	{Index: 4, Letter: "E", Solfege: "Mi"},
	{Index: 5, Letter: "F", Solfege: "Fa"},
	{Index: 6, Letter: "F#", Solfege: "Fa#", IsBlack: true},
	{Index: 7, Letter: "G", Solfege: "Sol"},
	{Index: 8, Letter: "G#", Solfege: "Sol#", IsBlack: true},
	{Index: 9, Letter: "A", Solfege: "La"},
	{Index: 10, Letter: "A#", Solfege: "La#", IsBlack: true},
	{Index: 11, Letter: "B", Solfege: "Si"},
}

// rootName pairs a spelling accepted by the parser with its pitch class.
type rootName struct {
	token   string
	index   int
	solfege bool
}

// rootNames is the ordered alternation tried by Parse. Solfège names come
// first, and within each system accidental spellings precede the bare name
// they start with.
var rootNames = []rootName{
	{"Do#", 1, true}, {"Do", 0, true},
	{"Reb", 1, true}, {"Re#", 3, true}, {"Re", 2, true},
	{"Mib", 3, true}, {"Mi", 4, true},
	{"Fa#", 6, true}, {"Fa", 5, true},
	{"Solb", 6, true}, {"Sol#", 8, true}, {"Sol", 7, true},
	{"Lab", 8, true}, {"La#", 10, true}, {"La", 9, true},
	{"Sib", 10, true}, {"Si", 11, true},

	{"C#", 1, false}, {"Db", 1, false}, {"C", 0, false},
	{"D#", 3, false}, {"D", 2, false},
	{"Eb", 3, false}, {"E", 4, false},
	{"F#", 6, false}, {"F", 5, false},
	{"Gb", 6, false}, {"G#", 8, false}, {"G", 7, false},
	{"Ab", 8, false}, {"A#", 10, false}, {"A", 9, false},
	{"Bb", 10, false}, {"B", 11, false},
}

// Notes returns the twelve pitch classes in index order.
func Notes() []Note {
	out := make([]Note, len(notes))
	copy(out, notes[:])
	return out
}

// NoteAt returns the note for any integer index, reduced modulo 12.
func NoteAt(i int) Note {
	return notes[NormalizeIndex(i)]
}

// NormalizeIndex reduces i into [0, 11] for arbitrarily large or negative values.
func NormalizeIndex(i int) int {
	return ((i % 12) + 12) % 12
}

// NoteIndex resolves a full note name (letter or solfège, any case).
func NoteIndex(name string) (int, bool) {
	for _, rn := range rootNames {
		if strings.EqualFold(rn.token, name) {
			return rn.index, true
		}
	}
	return 0, false
}
