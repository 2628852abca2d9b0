// Package tui provides the Bubble Tea songbook editor.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/chordmaster/internal/diagram"
	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/songbook"
	"github.com/verte-zerg/chordmaster/internal/store"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

type view int

const (
	viewSongs view = iota
	viewEditor
	viewLibrary
)

type editTarget int

const (
	editNone editTarget = iota
	editChord
	editTitle
	editAuthor
	editSection
)

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type savedMsg struct{ id string }

// whiteKeys are the roots offered by the root picker and the library.
var whiteKeys = []int{0, 2, 4, 5, 7, 9, 11}

var (
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	headerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	sectionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	selectedCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	problemCardStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	panelStyle        = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Model implements the Bubble Tea songbook editor.
type Model struct {
	cfg   model.Config
	store *store.Store

	keys    keyMap
	help    help.Model
	input   textinput.Model
	editing editTarget

	view    view
	songs   []model.Song
	songIdx int

	song     model.Song
	dirty    bool
	secIdx   int
	chordIdx int
	libIdx   int

	// debounced is nil when autosave is disabled; edits are then saved at once.
	debounced func(func())
	saved     chan tea.Msg

	width     int
	height    int
	err       error
	lastSaved string
}

// NewModel constructs the editor over st.
func NewModel(cfg model.Config, st *store.Store) *Model {
	m := &Model{
		cfg:   cfg,
		store: st,
		keys:  newKeyMap(),
		help:  help.New(),
		input: newInput(),
		saved: make(chan tea.Msg, 8),
	}
	if cfg.AutosaveMs > 0 {
		m.debounced = debounce.New(time.Duration(cfg.AutosaveMs) * time.Millisecond)
	}
	m.reloadSongs("")
	return m
}

func newInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForSave(m.saved)
}

// waitForSave delivers the next autosave result from the debounced writer.
func waitForSave(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(10, msg.Width-lipgloss.Width(m.input.Prompt)-2)
		return m, nil
	case savedMsg:
		m.lastSaved = msg.id
		return m, waitForSave(m.saved)
	case errMsg:
		m.err = msg.err
		return m, waitForSave(m.saved)
	case tea.KeyMsg:
		if m.editing != editNone {
			return m.updateInput(msg)
		}
		if msg.Type == tea.KeyCtrlC || key.Matches(msg, m.keys.Quit) {
			m.flush()
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.updateDisplay(msg) {
			return m, nil
		}
		switch m.view {
		case viewEditor:
			return m.updateEditor(msg)
		case viewLibrary:
			return m.updateLibrary(msg)
		default:
			return m.updateSongs(msg)
		}
	}
	if m.editing != editNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateDisplay handles the keys shared by every view.
func (m *Model) updateDisplay(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.TransposeUp):
		m.cfg.Transpose++
	case key.Matches(msg, m.keys.TransposeDown):
		m.cfg.Transpose--
	case key.Matches(msg, m.keys.TransposeReset):
		m.cfg.Transpose = 0
	case key.Matches(msg, m.keys.Notation):
		if m.cfg.Notation == theory.Solfege {
			m.cfg.Notation = theory.Letter
		} else {
			m.cfg.Notation = theory.Solfege
		}
	case key.Matches(msg, m.keys.Visualizer):
		if m.cfg.Visualizer == model.Guitar {
			m.cfg.Visualizer = model.Piano
		} else {
			m.cfg.Visualizer = model.Guitar
		}
	default:
		return false
	}
	return true
}

func (m *Model) updateSongs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.songIdx = max(0, m.songIdx-1)
	case key.Matches(msg, m.keys.Down):
		m.songIdx = max(0, min(m.songIdx+1, len(m.songs)-1))
	case key.Matches(msg, m.keys.Open):
		if m.songIdx < len(m.songs) {
			m.openSong(m.songs[m.songIdx])
		}
	case key.Matches(msg, m.keys.NewSong):
		song := songbook.NewSong()
		if err := m.store.SaveSong(context.Background(), song); err != nil {
			m.err = fmt.Errorf("create song: %w", err)
			return m, nil
		}
		m.reloadSongs(song.ID)
		m.openSong(song)
	case key.Matches(msg, m.keys.DeleteSong):
		if m.songIdx >= len(m.songs) {
			return m, nil
		}
		if err := m.store.DeleteSong(context.Background(), m.songs[m.songIdx].ID); err != nil {
			m.err = fmt.Errorf("delete song: %w", err)
			return m, nil
		}
		m.reloadSongs("")
	case key.Matches(msg, m.keys.Library):
		m.setView(viewLibrary)
	}
	return m, nil
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sec, hasSec := m.currentSection()
	chord, hasChord := m.currentChord()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.flush()
		m.reloadSongs(m.song.ID)
		m.song = model.Song{}
		m.setView(viewSongs)
	case key.Matches(msg, m.keys.Up):
		m.selectSection(m.secIdx - 1)
	case key.Matches(msg, m.keys.Down):
		m.selectSection(m.secIdx + 1)
	case key.Matches(msg, m.keys.Left):
		m.chordIdx = max(0, m.chordIdx-1)
	case key.Matches(msg, m.keys.Right):
		if hasSec {
			m.chordIdx = max(0, min(m.chordIdx+1, len(sec.Chords)-1))
		}
	case key.Matches(msg, m.keys.AddChord):
		if !hasSec {
			m.apply(songbook.AddSection(m.song))
			m.secIdx = 0
			sec, _ = m.currentSection()
		}
		song, _ := songbook.AddChord(m.song, sec.ID)
		m.apply(song)
		m.chordIdx = len(m.song.Sections[m.secIdx].Chords) - 1
	case key.Matches(msg, m.keys.EditChord):
		if hasChord {
			return m, m.startEdit(editChord, chord.OriginalValue)
		}
	case key.Matches(msg, m.keys.RemoveChord):
		if hasChord {
			m.apply(songbook.RemoveChord(m.song, sec.ID, chord.ID))
			m.selectSection(m.secIdx)
		}
	case key.Matches(msg, m.keys.NextQuality):
		if hasChord {
			m.apply(songbook.PickQuality(m.song, sec.ID, chord.ID, nextQuality(chord.OriginalValue)))
		}
	case key.Matches(msg, m.keys.PickRoot):
		if hasChord {
			digit := int(msg.String()[0] - '1')
			m.apply(songbook.PickRoot(m.song, sec.ID, chord.ID, whiteKeys[digit]))
		}
	case key.Matches(msg, m.keys.AddSection):
		m.apply(songbook.AddSection(m.song))
		m.selectSection(len(m.song.Sections) - 1)
	case key.Matches(msg, m.keys.RenameSection):
		if hasSec {
			return m, m.startEdit(editSection, sec.Name)
		}
	case key.Matches(msg, m.keys.RemoveSection):
		if hasSec {
			m.apply(songbook.RemoveSection(m.song, sec.ID))
			m.selectSection(m.secIdx)
		}
	case key.Matches(msg, m.keys.SectionUp):
		m.moveSection(-1)
	case key.Matches(msg, m.keys.SectionDown):
		m.moveSection(1)
	case key.Matches(msg, m.keys.EditTitle):
		return m, m.startEdit(editTitle, m.song.Title)
	case key.Matches(msg, m.keys.EditAuthor):
		return m, m.startEdit(editAuthor, m.song.Author)
	}
	return m, nil
}

func (m *Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.setView(viewSongs)
	case key.Matches(msg, m.keys.Up):
		m.libIdx = max(0, m.libIdx-1)
	case key.Matches(msg, m.keys.Down):
		m.libIdx = min(m.libIdx+1, len(theory.Qualities())-1)
	case key.Matches(msg, m.keys.Left):
		m.cfg.LibraryRoot = stepWhiteKey(m.cfg.LibraryRoot, -1)
	case key.Matches(msg, m.keys.Right):
		m.cfg.LibraryRoot = stepWhiteKey(m.cfg.LibraryRoot, 1)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.endEdit()
		m.flush()
		return m, tea.Quit
	case tea.KeyEsc:
		m.endEdit()
		return m, nil
	case tea.KeyEnter:
		m.commitEdit(strings.TrimSpace(m.input.Value()))
		m.endEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startEdit(target editTarget, value string) tea.Cmd {
	m.editing = target
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endEdit() {
	m.editing = editNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) commitEdit(value string) {
	switch m.editing {
	case editChord:
		sec, _ := m.currentSection()
		if chord, ok := m.currentChord(); ok {
			m.apply(songbook.UpdateChord(m.song, sec.ID, chord.ID, value))
		}
	case editSection:
		if sec, ok := m.currentSection(); ok {
			m.apply(songbook.RenameSection(m.song, sec.ID, value))
		}
	case editTitle:
		m.apply(songbook.SetTitle(m.song, value))
	case editAuthor:
		m.apply(songbook.SetAuthor(m.song, value))
	}
}

func (m *Model) setView(v view) {
	m.view = v
	m.keys.mode = v
}

func (m *Model) openSong(song model.Song) {
	m.song = song.Clone()
	m.dirty = false
	m.secIdx = 0
	m.chordIdx = 0
	m.setView(viewEditor)
}

func (m *Model) currentSection() (model.Section, bool) {
	if m.secIdx < 0 || m.secIdx >= len(m.song.Sections) {
		return model.Section{}, false
	}
	return m.song.Sections[m.secIdx], true
}

func (m *Model) currentChord() (model.Chord, bool) {
	sec, ok := m.currentSection()
	if !ok || m.chordIdx < 0 || m.chordIdx >= len(sec.Chords) {
		return model.Chord{}, false
	}
	return sec.Chords[m.chordIdx], true
}

// selectSection clamps idx to the song and keeps the chord cursor in range.
func (m *Model) selectSection(idx int) {
	m.secIdx = max(0, min(idx, len(m.song.Sections)-1))
	sec, ok := m.currentSection()
	if !ok {
		m.chordIdx = 0
		return
	}
	m.chordIdx = max(0, min(m.chordIdx, len(sec.Chords)-1))
}

func (m *Model) moveSection(delta int) {
	target := m.secIdx + delta
	if target < 0 || target >= len(m.song.Sections) {
		return
	}
	m.apply(songbook.MoveSection(m.song, m.secIdx, delta))
	m.secIdx = target
}

// apply replaces the open song and schedules a save.
func (m *Model) apply(song model.Song) {
	m.song = song
	m.dirty = true
	m.lastSaved = ""
	if m.debounced == nil {
		m.flush()
		return
	}
	snapshot := song.Clone()
	st := m.store
	out := m.saved
	m.debounced(func() {
		var msg tea.Msg = savedMsg{id: snapshot.ID}
		if err := st.SaveSong(context.Background(), snapshot); err != nil {
			msg = errMsg{fmt.Errorf("autosave %s: %w", snapshot.ID, err)}
		}
		select {
		case out <- msg:
		default:
		}
	})
}

// flush saves pending edits synchronously and cancels the debounced save.
func (m *Model) flush() {
	if !m.dirty || m.song.ID == "" {
		return
	}
	if m.debounced != nil {
		m.debounced(func() {})
	}
	if err := m.store.SaveSong(context.Background(), m.song); err != nil {
		m.err = fmt.Errorf("save song: %w", err)
		return
	}
	m.dirty = false
	m.lastSaved = m.song.ID
}

func (m *Model) reloadSongs(selectID string) {
	songs, err := m.store.ListSongs(context.Background())
	if err != nil {
		m.err = fmt.Errorf("load songs: %w", err)
		return
	}
	m.songs = songs
	m.songIdx = max(0, min(m.songIdx, len(songs)-1))
	for i, s := range songs {
		if s.ID == selectID {
			m.songIdx = i
			break
		}
	}
}

// nextQuality returns the suffix after the chord's current quality in table
// order, wrapping around. Unknown suffixes restart at major.
func nextQuality(text string) string {
	qualities := theory.Qualities()
	info, known := theory.LookupQuality(theory.Parse(text).Quality)
	if !known {
		return qualities[0].Suffix
	}
	for i, q := range qualities {
		if q.Quality == info.Quality {
			return qualities[(i+1)%len(qualities)].Suffix
		}
	}
	return qualities[0].Suffix
}

func stepWhiteKey(root, delta int) int {
	pos := 0
	for i, k := range whiteKeys {
		if k == theory.NormalizeIndex(root) {
			pos = i
			break
		}
	}
	pos = ((pos+delta)%len(whiteKeys) + len(whiteKeys)) % len(whiteKeys)
	return whiteKeys[pos]
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.renderHeader()
	var body string
	switch m.view {
	case viewEditor:
		body = m.renderEditor()
	case viewLibrary:
		body = m.renderLibrary()
	default:
		body = m.renderSongs()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, body, footer}, "\n\n")
	}
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	bodyHeight := max(1, m.height-headerHeight-footerHeight)
	return strings.Join([]string{
		fitLines(header, m.width, headerHeight),
		fitLines(body, m.width, bodyHeight),
		fitLines(footer, m.width, footerHeight),
	}, "\n")
}

func (m *Model) renderHeader() string {
	settings := fmt.Sprintf("notation=%s  visualizer=%s  transpose=%+d", m.cfg.Notation, m.cfg.Visualizer, m.cfg.Transpose)
	return titleStyle.Render("chordmaster") + "  " + headerStyle.Render(truncateLine(settings, m.width-len("chordmaster  ")))
}

func (m *Model) renderFooter() string {
	footer := m.help.View(m.keys)
	if m.err != nil {
		footer += "\n" + errorStyle.Render(m.err.Error())
	}
	return footer
}

func (m *Model) renderSongs() string {
	if len(m.songs) == 0 {
		return headerStyle.Render("No songs yet. Press n to create one.")
	}
	lines := make([]string, 0, len(m.songs))
	for i, s := range m.songs {
		row := fmt.Sprintf("%s · %s · %d chords", s.Title, s.Author, s.ChordCount())
		if m.width > 0 {
			row = truncateLine(row, m.width-2)
		}
		if i == m.songIdx {
			lines = append(lines, selectedStyle.Render("> "+row))
		} else {
			lines = append(lines, "  "+row)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderEditor() string {
	var lines []string
	if m.editing != editNone {
		lines = append(lines, m.input.View(), "")
	}
	title := titleStyle.Render(m.song.Title) + headerStyle.Render(" by "+m.song.Author)
	if m.lastSaved == m.song.ID {
		title += headerStyle.Render(" · saved")
	}
	lines = append(lines, title, "")

	cardWidth := 0
	if m.width > 0 {
		cardWidth = m.width - 2
	}
	for i, sec := range m.song.Sections {
		active := i == m.secIdx
		name := sectionStyle.Render("  " + sec.Name)
		if active {
			name = selectedStyle.Render("> " + sec.Name)
		}
		lines = append(lines, name)
		if len(sec.Chords) == 0 {
			lines = append(lines, headerStyle.Render("  (no chords)"))
			continue
		}
		wrapped := wrapCards(buildCards(sec, m.cfg, m.chordIdx, active), cardWidth)
		for _, line := range strings.Split(wrapped, "\n") {
			lines = append(lines, "  "+line)
		}
	}
	if chord, ok := m.currentChord(); ok {
		lines = append(lines, "", m.renderChordDetail(chord.OriginalValue))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderLibrary() string {
	root := theory.NoteAt(m.cfg.LibraryRoot)
	qualities := theory.Qualities()
	m.libIdx = max(0, min(m.libIdx, len(qualities)-1))

	rows := make([]string, 0, len(qualities))
	for i, q := range qualities {
		symbol := root.Letter + q.Suffix
		row := fmt.Sprintf("%-8s %s", theory.Transpose(symbol, m.cfg.Transpose, m.cfg.Notation), q.Name)
		if i == m.libIdx {
			rows = append(rows, selectedStyle.Render("> "+row))
		} else {
			rows = append(rows, "  "+row)
		}
	}
	list := strings.Join(rows, "\n")
	detail := m.renderChordDetail(root.Letter + qualities[m.libIdx].Suffix)
	title := titleStyle.Render("Library: " + theory.NoteAt(root.Index+m.cfg.Transpose).Name(m.cfg.Notation))
	return title + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", detail)
}

func (m *Model) renderChordDetail(text string) string {
	a := theory.Analyze(text, m.cfg.Transpose, m.cfg.Notation)
	names := make([]string, len(a.Notes))
	for i, n := range a.Notes {
		names[i] = theory.NoteAt(n).Name(m.cfg.Notation)
	}
	lines := []string{
		titleStyle.Render(a.Display) + headerStyle.Render(" · "+a.QualityName),
		headerStyle.Render("Notes: " + strings.Join(names, " ")),
		"",
		diagram.Renderer{Color: true, Dark: m.cfg.Dark}.Chord(a, m.cfg.Visualizer),
	}
	if m.cfg.ShowProblems {
		for _, p := range a.Problems() {
			lines = append(lines, errorStyle.Render(p))
		}
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
