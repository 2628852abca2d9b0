package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

// card is one rendered chord token with its display width.
type card struct {
	s     string
	width int
}

const cardGap = " "

func buildCards(sec model.Section, cfg model.Config, selected int, active bool) []card {
	out := make([]card, 0, len(sec.Chords))
	for i, ch := range sec.Chords {
		label := theory.Transpose(ch.OriginalValue, cfg.Transpose, cfg.Notation)
		style := cardStyle
		switch {
		case active && i == selected:
			style = selectedCardStyle
		case cfg.ShowProblems && len(theory.Analyze(ch.OriginalValue, 0, theory.Letter).Problems()) > 0:
			style = problemCardStyle
		}
		text := "[" + label + "]"
		out = append(out, card{
			s:     style.Render(text),
			width: runewidth.StringWidth(text),
		})
	}
	return out
}

func renderCards(cards []card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.s
	}
	return strings.Join(parts, cardGap)
}

// wrapCards lays cards out left to right, breaking lines so no line exceeds
// width. A card wider than width gets a line of its own.
func wrapCards(cards []card, width int) string {
	if width <= 0 {
		return renderCards(cards)
	}
	gap := runewidth.StringWidth(cardGap)
	var lines []string
	line := make([]card, 0, len(cards))
	lineWidth := 0
	for _, c := range cards {
		need := c.width
		if len(line) > 0 {
			need += gap
		}
		if lineWidth+need > width && len(line) > 0 {
			lines = append(lines, renderCards(line))
			line = line[:0]
			lineWidth = 0
			need = c.width
		}
		line = append(line, c)
		lineWidth += need
	}
	if len(line) > 0 {
		lines = append(lines, renderCards(line))
	}
	return strings.Join(lines, "\n")
}
