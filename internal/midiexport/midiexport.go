// Package midiexport writes a song's chord progression as a Standard MIDI File.
package midiexport

import (
	"errors"
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

const ticksPerQuarter = 960

// ErrNoChords is returned for songs without a single chord.
var ErrNoChords = errors.New("song has no chords")

// Options controls the rendered progression.
type Options struct {
	BPM           float64
	BeatsPerChord int
	// Offset transposes every chord, like the editor's global transposition.
	Offset   int
	BaseNote uint8
	Velocity uint8
	Channel  uint8
}

// DefaultOptions plays one 4/4 bar per chord at 100 BPM around middle C.
func DefaultOptions() Options {
	return Options{
		BPM:           100,
		BeatsPerChord: 4,
		BaseNote:      60,
		Velocity:      90,
	}
}

// Build renders the song as a single-track SMF with one block chord per
// chord entry and a marker at each section start.
func Build(song model.Song, opts Options) (*smf.SMF, error) {
	if song.ChordCount() == 0 {
		return nil, ErrNoChords
	}
	if opts.BeatsPerChord <= 0 {
		opts.BeatsPerChord = 4
	}
	if opts.BPM <= 0 {
		opts.BPM = 100
	}

	tf := smf.MetricTicks(ticksPerQuarter)
	length := tf.Ticks4th() * uint32(opts.BeatsPerChord)

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(song.Title))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(opts.BPM))

	// pending carries elapsed ticks to the next event, so a chord with no
	// playable keys still takes its full length.
	var pending uint32
	for _, sec := range song.Sections {
		if len(sec.Chords) == 0 {
			continue
		}
		tr.Add(pending, smf.MetaMarker(sec.Name))
		pending = 0
		for _, ch := range sec.Chords {
			keys := chordKeys(ch.OriginalValue, opts)
			for _, key := range keys {
				tr.Add(pending, midi.NoteOn(opts.Channel, key, opts.Velocity))
				pending = 0
			}
			pending += length
			for _, key := range keys {
				tr.Add(pending, midi.NoteOff(opts.Channel, key))
				pending = 0
			}
		}
	}
	tr.Close(pending)

	s := smf.New()
	s.TimeFormat = tf
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	return s, nil
}

// Write renders the song and writes the file to w.
func Write(w io.Writer, song model.Song, opts Options) error {
	s, err := Build(song, opts)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// chordKeys voices the chord above BaseNote, dropping keys above the MIDI range.
func chordKeys(text string, opts Options) []uint8 {
	voicing := theory.Voicing(text, opts.Offset)
	keys := make([]uint8, 0, len(voicing))
	for _, v := range voicing {
		key := int(opts.BaseNote) + v
		if key > 127 {
			continue
		}
		keys = append(keys, uint8(key))
	}
	return keys
}
