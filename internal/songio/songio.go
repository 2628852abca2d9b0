// Package songio reads and writes the songbook JSON exchange format: a
// top-level array of songs.
package songio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/chordmaster/internal/model"
)

// ErrNotArray is returned when the document is valid JSON but not an array.
var ErrNotArray = errors.New("songbook file must contain a JSON array of songs")

// Encode writes songs as indented JSON.
func Encode(w io.Writer, songs []model.Song) error {
	if songs == nil {
		songs = []model.Song{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(songs); err != nil {
		return fmt.Errorf("failed to encode songs: %w", err)
	}
	return nil
}

// Decode reads a JSON array of songs.
func Decode(r io.Reader) ([]model.Song, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse songbook: %w", err)
	}
	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("failed to parse songbook: %w", err)
	}
	if _, ok := top.([]any); !ok {
		return nil, ErrNotArray
	}
	var songs []model.Song
	if err := json.Unmarshal(raw, &songs); err != nil {
		return nil, fmt.Errorf("failed to decode songs: %w", err)
	}
	out := songs[:0]
	for _, s := range songs {
		if s.ID == "" {
			continue
		}
		out = append(out, Normalize(s))
	}
	return out, nil
}

// Merge appends imported songs whose ids are not already present. Existing
// songs are never overwritten.
func Merge(existing, imported []model.Song) ([]model.Song, int) {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]model.Song, 0, len(existing)+len(imported))
	for _, s := range existing {
		seen[s.ID] = struct{}{}
		merged = append(merged, s)
	}
	added := 0
	for _, s := range imported {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		merged = append(merged, s)
		added++
	}
	return merged, added
}

// ExportFileName names an export file after the given day.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("chordmaster_export_%s.json", t.Format("2006-01-02"))
}

// Normalize replaces nil section and chord slices with empty ones so the song
// encodes as arrays, and gives fresh ids to sections and chords whose id is
// empty or repeated within its scope.
func Normalize(s model.Song) model.Song {
	if s.Sections == nil {
		s.Sections = []model.Section{}
	}
	secSeen := make(map[string]bool, len(s.Sections))
	for i := range s.Sections {
		sec := &s.Sections[i]
		if sec.ID == "" || secSeen[sec.ID] {
			sec.ID = uuid.NewString()
		}
		secSeen[sec.ID] = true
		if sec.Chords == nil {
			sec.Chords = []model.Chord{}
		}
		chordSeen := make(map[string]bool, len(sec.Chords))
		for j := range sec.Chords {
			c := &sec.Chords[j]
			if c.ID == "" || chordSeen[c.ID] {
				c.ID = uuid.NewString()
			}
			chordSeen[c.ID] = true
		}
	}
	return s
}
