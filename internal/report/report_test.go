package report

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/store"
)

func TestTopChordsByFrequency(t *testing.T) {
	aggs := []model.ChordAggregate{
		{Symbol: "G", Count: 2, Songs: 1},
		{Symbol: "Am", Count: 5, Songs: 2},
		{Symbol: "C", Count: 2, Songs: 2},
	}
	top := TopChordsByFrequency(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 chords, got %d", len(top))
	}
	if top[0].Symbol != "Am" || top[1].Symbol != "C" {
		t.Fatalf("unexpected order: %+v", top)
	}
	if aggs[0].Symbol != "G" {
		t.Fatalf("input was reordered: %+v", aggs)
	}
	if got := TopChordsByFrequency(aggs, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %+v", got)
	}
}

func TestUnrecognizedChords(t *testing.T) {
	aggs := []model.ChordAggregate{
		{Symbol: "Am", Count: 3},
		{Symbol: "Hm", Count: 1},
		{Symbol: "Cxyz", Count: 1},
		{Symbol: "Solsus4", Count: 2},
	}
	got := UnrecognizedChords(aggs)
	if len(got) != 2 {
		t.Fatalf("expected 2 unrecognized chords, got %+v", got)
	}
	if got[0].Symbol != "Hm" || got[1].Symbol != "Cxyz" {
		t.Fatalf("unexpected chords: %+v", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Report{}, RenderOptions{Top: 5, Width: 80}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No songs found.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestBuildAndRender(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	}()

	song := model.Song{
		ID:    "s1",
		Title: "Test",
		Sections: []model.Section{{
			ID:   "v1",
			Name: "Verse 1",
			Chords: []model.Chord{
				{ID: "c1", OriginalValue: "Am"},
				{ID: "c2", OriginalValue: "Am"},
				{ID: "c3", OriginalValue: "Hm"},
			},
		}},
	}
	if err := st.SaveSong(ctx, song); err != nil {
		t.Fatalf("save song: %v", err)
	}

	rep, err := BuildReport(ctx, st)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if rep.Stats.Chords != 3 || len(rep.Usage) != 2 || len(rep.Unrecognized) != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	var buf bytes.Buffer
	if err := Render(&buf, rep, RenderOptions{Top: 5, Width: 80}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Songs: 1", "Chords: 3", "Most used chords", "Am", "Chords with problems", "Hm"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
