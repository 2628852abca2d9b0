package theory

import "strings"

// Strings is the number of guitar strings, low E first.
const Strings = 6

// BarreMinStrings is how many fretted strings must share a fret to count as a barre.
const BarreMinStrings = 3

// Fret values with special meaning.
const (
	Muted = -1
	Open  = 0
)

// Fingering holds one fret per string, low E to high e.
type Fingering [Strings]int

// MutedFingering is returned when no shape can be found.
var MutedFingering = Fingering{Muted, Muted, Muted, Muted, Muted, Muted}

// Barre describes a finger laid across several strings at one fret.
type Barre struct {
	Fret        int `json:"fret"`
	FirstString int `json:"firstString"`
	LastString  int `json:"lastString"`
}

var fingerings = map[string]Fingering{
	"C":  {-1, 3, 2, 0, 1, 0},
	"Cm": {-1, 3, 5, 5, 4, 3},
	"D":  {-1, -1, 0, 2, 3, 2},
	"Dm": {-1, -1, 0, 2, 3, 1},
	"E":  {0, 2, 2, 1, 0, 0},
	"Em": {0, 2, 2, 0, 0, 0},
	"F":  {1, 3, 3, 2, 1, 1},
	"Fm": {1, 3, 3, 1, 1, 1},
	"G":  {3, 2, 0, 0, 0, 3},
	"Gm": {3, 5, 5, 3, 3, 3},
	"A":  {-1, 0, 2, 2, 2, 0},
	"Am": {-1, 0, 2, 2, 1, 0},
	"B":  {-1, 2, 4, 4, 4, 2},
	"Bm": {-1, 2, 4, 4, 3, 2},

	// barre shapes for the sharp roots
	"C#":  {-1, 4, 6, 6, 6, 4},
	"C#m": {-1, 4, 6, 6, 5, 4},
	"D#":  {-1, 6, 8, 8, 8, 6},
	"D#m": {-1, 6, 8, 8, 7, 6},
	"F#":  {2, 4, 4, 3, 2, 2},
	"F#m": {2, 4, 4, 2, 2, 2},
	"G#":  {4, 6, 6, 5, 4, 4},
	"G#m": {4, 6, 6, 4, 4, 4},
	"A#":  {-1, 1, 3, 3, 3, 1},
	"A#m": {-1, 1, 3, 3, 2, 1},

	"C7": {-1, 3, 2, 3, 1, 0},
	"D7": {-1, -1, 0, 2, 1, 2},
	"E7": {0, 2, 0, 1, 0, 0},
	"G7": {3, 2, 0, 0, 0, 1},
	"A7": {-1, 0, 2, 0, 2, 0},
	"B7": {-1, 2, 1, 2, 0, 2},

	"Cmaj7": {-1, 3, 2, 0, 0, 0},
	"Fmaj7": {-1, -1, 3, 2, 1, 0},
	"Amaj7": {-1, 0, 2, 1, 2, 0},
	"Am7":   {-1, 0, 2, 0, 1, 0},
	"Dm7":   {-1, -1, 0, 2, 1, 1},
	"Em7":   {0, 2, 0, 0, 0, 0},
	"Asus2": {-1, 0, 2, 2, 0, 0},
	"Asus4": {-1, 0, 2, 2, 3, 0},
	"Dsus2": {-1, -1, 0, 2, 3, 0},
	"Dsus4": {-1, -1, 0, 2, 3, 3},
	"Esus4": {0, 2, 2, 2, 0, 0},
}

// LookupFingering resolves text to a curated shape. Tried in order: the
// exact text, the canonical root with the full quality, the root's minor or
// major triad shape, the bare root. Unrecognized roots are fully muted.
func LookupFingering(text string) Fingering {
	f, _ := lookupFingering(text)
	return f
}

// lookupFingering also returns the table key that matched.
func lookupFingering(text string) (Fingering, string) {
	if f, ok := fingerings[text]; ok {
		return f, text
	}
	p := Parse(text)
	if !p.Recognized() {
		return MutedFingering, ""
	}
	return fallbackFingering(p.RootIndex, p.Quality)
}

// fallbackFingering walks the chain after the exact-text lookup.
func fallbackFingering(rootIndex int, quality string) (Fingering, string) {
	root := NoteAt(rootIndex).Letter
	candidates := []string{root + quality, root + triadSuffix(quality), root}
	for _, key := range candidates {
		if f, ok := fingerings[key]; ok {
			return f, key
		}
	}
	return MutedFingering, ""
}

func triadSuffix(quality string) string {
	if strings.HasPrefix(quality, "m") && !strings.HasPrefix(quality, "maj") {
		return "m"
	}
	return ""
}

// DetectBarre finds a fret shared by at least BarreMinStrings fretted
// strings. When several frets qualify the lowest one wins.
func DetectBarre(f Fingering) (Barre, bool) {
	spans := map[int]*Barre{}
	counts := map[int]int{}
	for s, fret := range f {
		if fret <= 0 {
			continue
		}
		counts[fret]++
		if b, ok := spans[fret]; ok {
			b.LastString = s
			continue
		}
		spans[fret] = &Barre{Fret: fret, FirstString: s, LastString: s}
	}
	var best Barre
	found := false
	for fret, n := range counts {
		if n < BarreMinStrings {
			continue
		}
		if !found || fret < best.Fret {
			best = *spans[fret]
			found = true
		}
	}
	return best, found
}
