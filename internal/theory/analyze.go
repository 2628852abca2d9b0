package theory

import "fmt"

// Analysis bundles everything a renderer needs for one chord.
type Analysis struct {
	Source            string    `json:"source"`
	Offset            int       `json:"offset"`
	Notation          Notation  `json:"notation"`
	Display           string    `json:"display"`
	Root              Note      `json:"root"`
	Quality           string    `json:"quality"`
	QualityName       string    `json:"qualityName"`
	Notes             []int     `json:"notes"`
	Fingering         Fingering `json:"fingering"`
	FingeringKey      string    `json:"fingeringKey,omitempty"`
	Barre             *Barre    `json:"barre,omitempty"`
	RootRecognized    bool      `json:"rootRecognized"`
	QualityRecognized bool      `json:"qualityRecognized"`
}

// Analyze runs the full pipeline for text at the given transposition. The
// guitar shape is looked up from the transposed letter spelling, so text
// without a recognizable root shows the C shape like every other output.
func Analyze(text string, offset int, notation Notation) Analysis {
	p := Parse(text)
	qi, known := ResolveQuality(p.Quality)
	a := Analysis{
		Source:            text,
		Offset:            offset,
		Notation:          notation,
		Display:           Transpose(text, offset, notation),
		Root:              NoteAt(p.RootIndex + offset),
		Quality:           p.Quality,
		QualityName:       qi.Name,
		Notes:             ChordNotes(text, offset),
		RootRecognized:    p.Recognized(),
		QualityRecognized: known,
	}
	a.Fingering, a.FingeringKey = analyzeFingering(p, offset)
	if b, ok := DetectBarre(a.Fingering); ok {
		a.Barre = &b
	}
	return a
}

// analyzeFingering tries the transposed letter spelling as an exact key,
// then falls back from the parsed root and quality. Re-parsing the spelling
// would read a letter root followed by "a" (Fam) as solfège.
func analyzeFingering(p ParsedChord, offset int) (Fingering, string) {
	root := NormalizeIndex(p.RootIndex + offset)
	exact := NoteAt(root).Letter + p.Quality
	if f, ok := fingerings[exact]; ok {
		return f, exact
	}
	return fallbackFingering(root, p.Quality)
}

// Problems lists non-fatal diagnostics. Rendering never depends on them.
func (a Analysis) Problems() []string {
	var out []string
	if !a.RootRecognized && a.Source != "" {
		out = append(out, fmt.Sprintf("root not recognized in %q, showing C", a.Source))
	}
	if !a.QualityRecognized {
		out = append(out, fmt.Sprintf("quality %q not recognized, showing major triad", a.Quality))
	}
	if a.FingeringKey == "" {
		out = append(out, "no guitar shape for "+a.Root.Letter)
	}
	return out
}
