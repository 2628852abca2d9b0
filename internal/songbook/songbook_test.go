package songbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chordmaster/internal/model"
)

func fixedClock(t *testing.T, ms int64) {
	t.Helper()
	prev := Clock
	Clock = func() time.Time { return time.UnixMilli(ms) }
	t.Cleanup(func() { Clock = prev })
}

func TestNewSong(t *testing.T) {
	fixedClock(t, 1000)
	s := NewSong()
	require.NotEmpty(t, s.ID)
	require.Equal(t, DefaultTitle, s.Title)
	require.Equal(t, DefaultAuthor, s.Author)
	require.Len(t, s.Sections, 1)
	require.Equal(t, FirstSectionName, s.Sections[0].Name)
	require.Equal(t, int64(1000), s.CreatedAt)
	require.Equal(t, int64(1000), s.LastModified)
}

func TestChordEditing(t *testing.T) {
	fixedClock(t, 1000)
	s := NewSong()
	sec := s.Sections[0].ID

	fixedClock(t, 2000)
	s, c1 := AddChord(s, sec)
	s, c2 := AddChord(s, sec)
	require.Equal(t, int64(2000), s.LastModified)
	require.Equal(t, 2, s.ChordCount())

	s = UpdateChord(s, sec, c1, "Am7")
	s = PickRoot(s, sec, c1, 2)
	c, ok := FindChord(s, c1)
	require.True(t, ok)
	require.Equal(t, "Dm7", c.OriginalValue)

	s = UpdateChord(s, sec, c2, "Sol")
	s = PickQuality(s, sec, c2, "sus4")
	c, _ = FindChord(s, c2)
	require.Equal(t, "Solsus4", c.OriginalValue)

	before := s
	s = RemoveChord(s, sec, c1)
	require.Equal(t, 1, s.ChordCount())
	require.Equal(t, 2, before.ChordCount(), "input must not be mutated")
}

func TestSections(t *testing.T) {
	s := NewSong()
	s = AddSection(s)
	s = AddSection(s)
	require.Len(t, s.Sections, 3)
	first, last := s.Sections[0].ID, s.Sections[2].ID
	s = RenameSection(s, last, "Bridge")
	require.Equal(t, "Bridge", s.Sections[2].Name)
	require.Equal(t, DefaultSectionName, s.Sections[1].Name)

	same := MoveSection(s, 0, -1)
	require.Equal(t, first, same.Sections[0].ID)
	same = MoveSection(s, 2, 1)
	require.Equal(t, last, same.Sections[2].ID)

	s = MoveSection(s, 2, -1)
	require.Equal(t, last, s.Sections[1].ID)

	s = RemoveSection(s, first)
	require.Len(t, s.Sections, 2)
	require.Equal(t, last, s.Sections[0].ID)
}

func TestTitleAuthor(t *testing.T) {
	fixedClock(t, 5)
	s := model.Song{ID: "x"}
	s = SetTitle(s, "Hey Jude")
	s = SetAuthor(s, "The Beatles")
	require.Equal(t, "Hey Jude", s.Title)
	require.Equal(t, "The Beatles", s.Author)
	require.Equal(t, int64(5), s.LastModified)
}

func TestUnknownIDsAreNoops(t *testing.T) {
	s := NewSong()
	s2, _ := AddChord(s, "missing")
	require.Equal(t, 0, s2.ChordCount())
	require.Equal(t, s, PickRoot(s, s.Sections[0].ID, "missing", 3))
}
