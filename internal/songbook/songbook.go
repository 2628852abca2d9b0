// Package songbook implements editor operations on songs. Every operation
// returns an updated copy and leaves its input untouched.
package songbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

const (
	DefaultTitle       = "Untitled Track"
	DefaultAuthor      = "Unknown Artist"
	FirstSectionName   = "Verse 1"
	DefaultSectionName = "Section"
	DefaultChord       = "C"
)

// Clock returns the current time. Tests replace it.
var Clock = time.Now

func nowMs() int64 {
	return Clock().UnixMilli()
}

func newID() string {
	return uuid.New().String()
}

// NewSong creates an empty song with a single section.
func NewSong() model.Song {
	now := nowMs()
	return model.Song{
		ID:           newID(),
		Title:        DefaultTitle,
		Author:       DefaultAuthor,
		Sections:     []model.Section{{ID: newID(), Name: FirstSectionName, Chords: []model.Chord{}}},
		CreatedAt:    now,
		LastModified: now,
	}
}

func touch(s model.Song) model.Song {
	s.LastModified = nowMs()
	return s
}

// SetTitle renames the song.
func SetTitle(s model.Song, title string) model.Song {
	s = s.Clone()
	s.Title = title
	return touch(s)
}

// SetAuthor changes the song author.
func SetAuthor(s model.Song, author string) model.Song {
	s = s.Clone()
	s.Author = author
	return touch(s)
}

// AddSection appends an empty section.
func AddSection(s model.Song) model.Song {
	s = s.Clone()
	s.Sections = append(s.Sections, model.Section{ID: newID(), Name: DefaultSectionName, Chords: []model.Chord{}})
	return touch(s)
}

// RemoveSection drops the section with the given id.
func RemoveSection(s model.Song, sectionID string) model.Song {
	s = s.Clone()
	out := s.Sections[:0]
	for _, sec := range s.Sections {
		if sec.ID != sectionID {
			out = append(out, sec)
		}
	}
	s.Sections = out
	return touch(s)
}

// RenameSection sets the name of a section.
func RenameSection(s model.Song, sectionID, name string) model.Song {
	return updateSection(s, sectionID, func(sec *model.Section) {
		sec.Name = name
	})
}

// MoveSection swaps the section at index with its neighbour. Moves past
// either end are ignored.
func MoveSection(s model.Song, index, delta int) model.Song {
	target := index + delta
	if index < 0 || index >= len(s.Sections) || target < 0 || target >= len(s.Sections) || delta == 0 {
		return s
	}
	s = s.Clone()
	s.Sections[index], s.Sections[target] = s.Sections[target], s.Sections[index]
	return touch(s)
}

// AddChord appends a new chord to a section and returns its id.
func AddChord(s model.Song, sectionID string) (model.Song, string) {
	id := newID()
	s = updateSection(s, sectionID, func(sec *model.Section) {
		sec.Chords = append(sec.Chords, model.Chord{ID: id, OriginalValue: DefaultChord})
	})
	return s, id
}

// UpdateChord replaces the text of a chord.
func UpdateChord(s model.Song, sectionID, chordID, value string) model.Song {
	return updateSection(s, sectionID, func(sec *model.Section) {
		for i := range sec.Chords {
			if sec.Chords[i].ID == chordID {
				sec.Chords[i].OriginalValue = value
			}
		}
	})
}

// RemoveChord deletes a chord from a section.
func RemoveChord(s model.Song, sectionID, chordID string) model.Song {
	return updateSection(s, sectionID, func(sec *model.Section) {
		out := sec.Chords[:0]
		for _, c := range sec.Chords {
			if c.ID != chordID {
				out = append(out, c)
			}
		}
		sec.Chords = out
	})
}

// PickRoot keeps the chord quality and replaces its root with the letter
// name of rootIndex.
func PickRoot(s model.Song, sectionID, chordID string, rootIndex int) model.Song {
	c, ok := FindChord(s, chordID)
	if !ok {
		return s
	}
	p := theory.Parse(c.OriginalValue)
	return UpdateChord(s, sectionID, chordID, theory.NoteAt(rootIndex).Letter+p.Quality)
}

// PickQuality keeps the typed root token and replaces the suffix.
func PickQuality(s model.Song, sectionID, chordID, suffix string) model.Song {
	c, ok := FindChord(s, chordID)
	if !ok {
		return s
	}
	p := theory.Parse(c.OriginalValue)
	return UpdateChord(s, sectionID, chordID, p.RootToken+suffix)
}

// FindChord locates a chord anywhere in the song.
func FindChord(s model.Song, chordID string) (model.Chord, bool) {
	for _, sec := range s.Sections {
		for _, c := range sec.Chords {
			if c.ID == chordID {
				return c, true
			}
		}
	}
	return model.Chord{}, false
}

func updateSection(s model.Song, sectionID string, fn func(*model.Section)) model.Song {
	s = s.Clone()
	for i := range s.Sections {
		if s.Sections[i].ID == sectionID {
			fn(&s.Sections[i])
			return touch(s)
		}
	}
	return s
}
