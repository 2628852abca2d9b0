package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/store"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

const sparkChars = " .:-=+*#%@"

// Report contains precomputed data for stats rendering.
type Report struct {
	Stats        model.SongStats
	Usage        []model.ChordAggregate
	Unrecognized []model.ChordAggregate
	SongSizes    []float64
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store) (Report, error) {
	stats, err := st.Stats(ctx)
	if err != nil {
		return Report{}, err
	}
	usage, err := st.ChordUsage(ctx)
	if err != nil {
		return Report{}, err
	}
	songs, err := st.ListSongs(ctx)
	if err != nil {
		return Report{}, err
	}
	// Oldest first so the sparkline reads left to right in time.
	sizes := make([]float64, len(songs))
	for i, song := range songs {
		sizes[len(songs)-1-i] = float64(song.ChordCount())
	}
	return Report{
		Stats:        stats,
		Usage:        usage,
		Unrecognized: UnrecognizedChords(usage),
		SongSizes:    sizes,
	}, nil
}

// TopChordsByFrequency returns the top N chord aggregates by total count.
func TopChordsByFrequency(aggs []model.ChordAggregate, n int) []model.ChordAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.ChordAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Symbol < items[j].Symbol
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// UnrecognizedChords selects the symbols whose root or quality the engine
// could not read, or that have no guitar shape.
func UnrecognizedChords(aggs []model.ChordAggregate) []model.ChordAggregate {
	var out []model.ChordAggregate
	for _, agg := range aggs {
		if len(theory.Analyze(agg.Symbol, 0, theory.Letter).Problems()) > 0 {
			out = append(out, agg)
		}
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderOptions controls the stats output.
type RenderOptions struct {
	Top      int
	Width    int
	UseColor bool
}

// Render prints the summary, the most used chords, and chords with problems.
func Render(w io.Writer, rep Report, opts RenderOptions) error {
	heading := func(s string) string { return s }
	if opts.UseColor {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
		heading = func(s string) string { return style.Render(s) }
	}

	if rep.Stats.Songs == 0 {
		_, err := fmt.Fprintln(w, "No songs found.")
		return err
	}

	lines := []string{
		heading("Summary"),
		fmt.Sprintf("Songs: %d", rep.Stats.Songs),
		fmt.Sprintf("Sections: %d", rep.Stats.Sections),
		fmt.Sprintf("Chords: %d", rep.Stats.Chords),
		fmt.Sprintf("Distinct symbols: %d", len(rep.Usage)),
	}
	if spark := Sparkline(clip(rep.SongSizes, opts.Width-len("Song sizes: "))); spark != "" {
		lines = append(lines, "Song sizes: "+spark)
	}
	lines = append(lines, "")

	top := TopChordsByFrequency(rep.Usage, opts.Top)
	if len(top) > 0 {
		lines = append(lines, heading("Most used chords"))
		lines = append(lines, FormatTable([]string{"Chord", "Uses", "Songs"}, aggregateRows(top), map[int]bool{1: true, 2: true})...)
		lines = append(lines, "")
	}

	if len(rep.Unrecognized) > 0 {
		lines = append(lines, heading("Chords with problems"))
		rows := make([][]string, 0, len(rep.Unrecognized))
		for _, agg := range rep.Unrecognized {
			problems := theory.Analyze(agg.Symbol, 0, theory.Letter).Problems()
			rows = append(rows, []string{agg.Symbol, strconv.Itoa(agg.Count), strings.Join(problems, "; ")})
		}
		lines = append(lines, FormatTable([]string{"Chord", "Uses", "Problem"}, rows, map[int]bool{1: true})...)
		lines = append(lines, "")
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func aggregateRows(aggs []model.ChordAggregate) [][]string {
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{agg.Symbol, strconv.Itoa(agg.Count), strconv.Itoa(agg.Songs)})
	}
	return rows
}

// clip keeps the most recent values that fit in width columns.
func clip(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	return values[len(values)-width:]
}
