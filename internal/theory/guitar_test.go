package theory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chordmaster/internal/theory"
)

func TestLookupFingering(t *testing.T) {
	cases := []struct {
		in   string
		want theory.Fingering
	}{
		{"C", theory.Fingering{-1, 3, 2, 0, 1, 0}},
		{"Csus4", theory.Fingering{-1, 3, 2, 0, 1, 0}},
		{"Cm7", theory.Fingering{-1, 3, 5, 5, 4, 3}},
		{"Cmaj7", theory.Fingering{-1, 3, 2, 0, 0, 0}},
		{"Gmaj7", theory.Fingering{3, 2, 0, 0, 0, 3}},
		{"Em9", theory.Fingering{0, 2, 2, 0, 0, 0}},
		{"Bb", theory.Fingering{-1, 1, 3, 3, 3, 1}},
		{"Do", theory.Fingering{-1, 3, 2, 0, 1, 0}},
		{"xyz", theory.MutedFingering},
		{"", theory.MutedFingering},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, theory.LookupFingering(tc.in))
		})
	}
}

func TestDetectBarre(t *testing.T) {
	b, ok := theory.DetectBarre(theory.LookupFingering("F"))
	require.True(t, ok)
	require.Equal(t, theory.Barre{Fret: 1, FirstString: 0, LastString: 5}, b)

	b, ok = theory.DetectBarre(theory.LookupFingering("B"))
	require.True(t, ok)
	require.Equal(t, theory.Barre{Fret: 4, FirstString: 2, LastString: 4}, b)

	_, ok = theory.DetectBarre(theory.LookupFingering("C"))
	require.False(t, ok)

	_, ok = theory.DetectBarre(theory.MutedFingering)
	require.False(t, ok)

	b, ok = theory.DetectBarre(theory.Fingering{5, 5, 5, 3, 3, 3})
	require.True(t, ok)
	require.Equal(t, theory.Barre{Fret: 3, FirstString: 3, LastString: 5}, b)
}

func TestAnalyze(t *testing.T) {
	a := theory.Analyze("Bbm7", 2, theory.Solfege)
	require.Equal(t, "Dom7", a.Display)
	require.Equal(t, []int{0, 3, 7, 10}, a.Notes)
	require.Equal(t, "Cm", a.FingeringKey)
	require.Nil(t, a.Barre)
	require.True(t, a.RootRecognized)
	require.True(t, a.QualityRecognized)
	require.Empty(t, a.Problems())

	a = theory.Analyze("F", 0, theory.Letter)
	require.NotNil(t, a.Barre)
	require.Equal(t, 1, a.Barre.Fret)

	a = theory.Analyze("?!", 0, theory.Letter)
	require.Equal(t, "C", a.Display)
	require.False(t, a.RootRecognized)
	require.Len(t, a.Problems(), 1)

	a = theory.Analyze("Gwat", 0, theory.Letter)
	require.Equal(t, "Gwat", a.Display)
	require.Equal(t, []int{7, 11, 2}, a.Notes)
	require.Equal(t, "G", a.FingeringKey)
	require.Len(t, a.Problems(), 1)
}

func TestAnalyzeUnlistedAccidentals(t *testing.T) {
	a := theory.Analyze("E#", 1, theory.Letter)
	require.Equal(t, "F", a.Display)
	require.Equal(t, []int{5, 9, 0}, a.Notes)
	require.Equal(t, "F", a.FingeringKey)

	a = theory.Analyze("Cb", 2, theory.Letter)
	require.Equal(t, "D", a.Display)
	require.Equal(t, []int{2, 6, 9}, a.Notes)
	require.Equal(t, "D", a.FingeringKey)

	a = theory.Analyze("B#m", 0, theory.Letter)
	require.Equal(t, []int{11, 2, 6}, a.Notes)
	require.Equal(t, "Bm", a.FingeringKey)
	require.True(t, a.QualityRecognized)
}

func TestAnalyzeKeepsLetterQualityForGuitar(t *testing.T) {
	a := theory.Analyze("Eam", 1, theory.Letter)
	require.Equal(t, "Fam", a.Display)
	require.Equal(t, []int{5, 9, 0}, a.Notes)
	require.Equal(t, "F", a.FingeringKey)
}
