// Package model defines shared data structures.
package model

import "github.com/verte-zerg/chordmaster/internal/theory"

// Visualizer selects the diagram style.
type Visualizer string

const (
	Piano  Visualizer = "piano"
	Guitar Visualizer = "guitar"
)

// Config defines editor display settings. Every render receives these
// explicitly.
type Config struct {
	Notation     theory.Notation
	Visualizer   Visualizer
	Transpose    int
	AutosaveMs   int
	Dark         bool
	LibraryRoot  int
	ShowProblems bool
}

// ServerConfig defines settings for the local HTTP API.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// Chord is a single user-entered chord symbol.
type Chord struct {
	ID            string `json:"id"`
	OriginalValue string `json:"originalValue"`
}

// Section is a named, ordered group of chords.
type Section struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Chords []Chord `json:"chords"`
}

// Song is the persisted unit of the songbook. Timestamps are Unix milliseconds.
type Song struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Sections     []Section `json:"sections"`
	CreatedAt    int64     `json:"createdAt"`
	LastModified int64     `json:"lastModified"`
}

// Clone returns a deep copy of the song.
func (s Song) Clone() Song {
	out := s
	out.Sections = make([]Section, len(s.Sections))
	for i, sec := range s.Sections {
		sec.Chords = append(make([]Chord, 0, len(sec.Chords)), sec.Chords...)
		out.Sections[i] = sec
	}
	return out
}

// ChordCount returns the number of chords across all sections.
func (s Song) ChordCount() int {
	n := 0
	for _, sec := range s.Sections {
		n += len(sec.Chords)
	}
	return n
}

// SongStats summarizes the songbook for reporting.
type SongStats struct {
	Songs    int
	Sections int
	Chords   int
}

// ChordAggregate counts how often a chord symbol appears.
type ChordAggregate struct {
	Symbol string
	Count  int
	Songs  int
}
