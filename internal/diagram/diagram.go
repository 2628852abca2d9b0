// Package diagram draws chord diagrams as terminal text.
package diagram

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

const (
	// PianoKeys is the number of semitones drawn. Only the first octave is marked.
	PianoKeys = 24
	// FretRows is the number of frets drawn below the nut.
	FretRows = 5
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	lightGrid   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	darkGrid    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Renderer draws diagrams. The zero value renders plain ASCII.
type Renderer struct {
	Color bool
	Dark  bool
}

// Chord draws the analysis with the chosen visualizer.
func (r Renderer) Chord(a theory.Analysis, v model.Visualizer) string {
	if v == model.Guitar {
		return r.Guitar(a.Fingering, a.Barre)
	}
	return r.Piano(a.Notes)
}

// Piano draws two octaves as a staggered strip: black keys on the top line,
// white keys on the bottom line.
func (r Renderer) Piano(notes []int) string {
	active := make(map[int]bool, len(notes))
	for _, n := range notes {
		active[theory.NormalizeIndex(n)] = true
	}
	var top, bottom strings.Builder
	for i := 0; i < PianoKeys; i++ {
		note := theory.NoteAt(i)
		lit := i < 12 && active[note.Index]
		cell := r.key(note.IsBlack, lit)
		if note.IsBlack {
			top.WriteString(cell)
			bottom.WriteString("  ")
		} else {
			top.WriteString("  ")
			bottom.WriteString(cell)
		}
	}
	return top.String() + "\n" + bottom.String()
}

func (r Renderer) key(black, lit bool) string {
	switch {
	case lit && black:
		return r.paint(accentStyle, "@@")
	case lit:
		return r.paint(accentStyle, "()")
	case black:
		return r.grid("##")
	default:
		return r.grid("[]")
	}
}

// Guitar draws strings low to high from left to right: a status line (X muted,
// O open), the nut, and FretRows fret rows. Shapes that do not fit below the
// nut start at their lowest fret and carry a fret label.
func (r Renderer) Guitar(f theory.Fingering, barre *theory.Barre) string {
	base := baseFret(f)

	status := make([]string, theory.Strings)
	for s, fret := range f {
		switch fret {
		case theory.Muted:
			status[s] = r.paint(mutedStyle, "X")
		case theory.Open:
			status[s] = "O"
		default:
			status[s] = " "
		}
	}
	lines := []string{strings.TrimRight(strings.Join(status, " "), " ")}

	nut := "="
	if base > 1 {
		nut = "-"
	}
	lines = append(lines, r.grid(strings.Repeat(nut, 2*theory.Strings-1)))

	for row := 0; row < FretRows; row++ {
		fret := base + row
		onBarre := barre != nil && barre.Fret == fret
		inSpan := func(s int) bool {
			return onBarre && s >= barre.FirstString && s <= barre.LastString
		}
		var b strings.Builder
		for s := 0; s < theory.Strings; s++ {
			if s > 0 {
				if inSpan(s-1) && inSpan(s) {
					b.WriteString(r.paint(accentStyle, "="))
				} else {
					b.WriteByte(' ')
				}
			}
			switch {
			case f[s] == fret:
				b.WriteString(r.paint(accentStyle, "o"))
			case inSpan(s):
				b.WriteString(r.paint(accentStyle, "="))
			default:
				b.WriteString(r.grid("|"))
			}
		}
		if row == 0 && base > 1 {
			fmt.Fprintf(&b, " %dfr", base)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func baseFret(f theory.Fingering) int {
	lowest, highest := 0, 0
	for _, fret := range f {
		if fret <= 0 {
			continue
		}
		if lowest == 0 || fret < lowest {
			lowest = fret
		}
		highest = max(highest, fret)
	}
	if highest <= FretRows {
		return 1
	}
	return lowest
}

func (r Renderer) paint(style lipgloss.Style, s string) string {
	if !r.Color {
		return s
	}
	return style.Render(s)
}

func (r Renderer) grid(s string) string {
	if r.Dark {
		return r.paint(darkGrid, s)
	}
	return r.paint(lightGrid, s)
}
