package theory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chordmaster/internal/theory"
)

func TestNoteTable(t *testing.T) {
	notes := theory.Notes()
	require.Len(t, notes, 12)
	black := 0
	for i, n := range notes {
		require.Equal(t, i, n.Index)
		if n.IsBlack {
			black++
		}
	}
	require.Equal(t, 5, black)
	for _, i := range []int{1, 3, 6, 8, 10} {
		require.True(t, notes[i].IsBlack, "index %d", i)
	}
}

func TestNoteAtNormalizes(t *testing.T) {
	require.Equal(t, "B", theory.NoteAt(-1).Letter)
	require.Equal(t, "C", theory.NoteAt(-120).Letter)
	require.Equal(t, "Sol", theory.NoteAt(31).Solfege)
	require.Equal(t, 11, theory.NormalizeIndex(-1_000_001))
}

func TestNoteIndex(t *testing.T) {
	cases := map[string]int{"C": 0, "db": 1, "Eb": 3, "sol#": 8, "SIB": 10, "Fa": 5}
	for name, want := range cases {
		got, ok := theory.NoteIndex(name)
		require.True(t, ok, name)
		require.Equal(t, want, got, name)
	}
	_, ok := theory.NoteIndex("H")
	require.False(t, ok)
}

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		index int
		token string
		qual  string
	}{
		{"C#m7", 1, "C#", "m7"},
		{"Dosus4", 0, "Do", "sus4"},
		{"Do#", 1, "Do#", ""},
		{"Dm", 2, "D", "m"},
		{"bbm", 10, "bb", "m"},
		{"Solb7", 6, "Solb", "7"},
		{"Sol7", 7, "Sol", "7"},
		{"Lam", 9, "La", "m"},
		{"Fam", 5, "Fa", "m"},
		{"Fadd9", 5, "F", "add9"},
		{"Faug", 5, "F", "aug"},
		{"Fa", 5, "Fa", ""},
		{"Falt", 5, "F", "alt"},
		{"Cb", 0, "Cb", ""},
		{"E#", 4, "E#", ""},
		{"B#m", 11, "B#", "m"},
		{"fbmaj7", 5, "fb", "maj7"},
		{"Cbm", 0, "Cb", "m"},
		{"Gxyz", 7, "G", "xyz"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			p := theory.Parse(tc.in)
			require.Equal(t, tc.index, p.RootIndex)
			require.Equal(t, tc.token, p.RootToken)
			require.Equal(t, tc.qual, p.Quality)
			require.True(t, p.Recognized())
		})
	}
}

func TestParseDefaults(t *testing.T) {
	for _, in := range []string{"", "#m7", "Hm", "  C"} {
		p := theory.Parse(in)
		require.Equal(t, theory.ParsedChord{}, p, "input %q", in)
		require.False(t, p.Recognized())
	}
}

func TestTranspose(t *testing.T) {
	require.Equal(t, "B", theory.Transpose("C", -13, theory.Letter))
	require.Equal(t, "F", theory.Transpose("", 5, theory.Letter))
	require.Equal(t, "Dm7", theory.Transpose("Cm7", 2, theory.Letter))
	require.Equal(t, "Rem7", theory.Transpose("Cm7", 2, theory.Solfege))
	require.Equal(t, "A#sus4", theory.Transpose("Bbsus4", 0, theory.Letter))
	require.Equal(t, "La", theory.Transpose("xyz", 120+9, theory.Solfege))
	require.Equal(t, "G#M7", theory.Transpose("abM7", 12*7, theory.Letter))
	require.Equal(t, "F", theory.Transpose("E#", 1, theory.Letter))
	require.Equal(t, "Bm", theory.Transpose("B#m", 0, theory.Letter))
	require.Equal(t, "D", theory.Transpose("Cb", 2, theory.Letter))
	require.Equal(t, "F", theory.Transpose("Fb", 0, theory.Letter))
}

func TestTransposeRoundTrip(t *testing.T) {
	inputs := []string{"C", "Ebmaj7", "Sol#m", "Fadd9", "bb9", "La7", "Ealt"}
	for _, in := range inputs {
		for n := -30; n <= 30; n++ {
			up := theory.Transpose(in, n, theory.Letter)
			back := theory.Transpose(up, -n, theory.Letter)
			require.Equal(t, theory.Canonical(in), back, "input %q offset %d", in, n)
		}
	}
}

func TestTransposeRoundTripLetterBeforeA(t *testing.T) {
	// Letter F followed by a quality starting with "a" re-parses as Fa.
	up := theory.Transpose("Eam", 1, theory.Letter)
	require.Equal(t, "Fam", up)
	require.Equal(t, "Em", theory.Transpose(up, -1, theory.Letter))
	require.Equal(t, "Eam", theory.Canonical("Eam"))
}

func TestReparseKeepsQuality(t *testing.T) {
	for _, in := range []string{"C#m7", "Dosus4", "Ebdim7", "Am7b5", "G13"} {
		p := theory.Parse(in)
		again := theory.Parse(theory.NoteAt(p.RootIndex).Letter + p.Quality)
		require.Equal(t, p.Quality, again.Quality, in)
	}
}

func TestQualityTable(t *testing.T) {
	for _, q := range theory.Qualities() {
		require.NotEmpty(t, q.Intervals, q.Name)
		require.Equal(t, 0, q.Intervals[0], q.Name)
	}
	qi, ok := theory.LookupQuality("9")
	require.True(t, ok)
	require.Equal(t, []int{0, 4, 7, 10, 14}, qi.Intervals)
	require.Equal(t, theory.Dominant9, qi.Quality)

	qi, ok = theory.ResolveQuality("wat")
	require.False(t, ok)
	require.Equal(t, "Major", qi.Name)
	require.Equal(t, "m7b5", theory.HalfDiminished.Suffix())
	require.Equal(t, "Power Chord", theory.Power.Name())
}

func TestQualityIntervalsAreCopies(t *testing.T) {
	iv := theory.Minor.Intervals()
	iv[1] = 99
	require.Equal(t, []int{0, 3, 7}, theory.Minor.Intervals())
}

func TestChordNotes(t *testing.T) {
	require.Equal(t, []int{0, 4, 7}, theory.ChordNotes("C", 0))
	require.Equal(t, []int{9, 0, 4}, theory.ChordNotes("Am", 0))
	require.Equal(t, []int{0, 4, 7, 10, 2}, theory.ChordNotes("C9", 0))
	require.Equal(t, []int{11, 3, 6}, theory.ChordNotes("C", -13))
	require.Equal(t, []int{2, 6, 9}, theory.ChordNotes("Dnonsense", 0))
	require.Equal(t, []int{0, 4, 7}, theory.ChordNotes("", 0))
}

func TestVoicingKeepsUpperIntervals(t *testing.T) {
	require.Equal(t, []int{2, 6, 9, 12, 16}, theory.Voicing("C9", 2))
	require.Equal(t, []int{11, 14, 18}, theory.Voicing("Bm", 0))
}
