package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Open  key.Binding
	Back  key.Binding
	Quit  key.Binding
	Help  key.Binding

	NewSong    key.Binding
	DeleteSong key.Binding
	Library    key.Binding

	AddChord      key.Binding
	EditChord     key.Binding
	RemoveChord   key.Binding
	NextQuality   key.Binding
	PickRoot      key.Binding
	AddSection    key.Binding
	RenameSection key.Binding
	RemoveSection key.Binding
	SectionUp     key.Binding
	SectionDown   key.Binding
	EditTitle     key.Binding
	EditAuthor    key.Binding

	TransposeUp    key.Binding
	TransposeDown  key.Binding
	TransposeReset key.Binding
	Notation       key.Binding
	Visualizer     key.Binding

	// mode decides which bindings the help bar shows.
	mode view
}

func newKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Open:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:  key.NewBinding(key.WithKeys("q", tea.KeyCtrlC.String()), key.WithHelp("q", "quit")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		NewSong:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new song")),
		DeleteSong: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete song")),
		Library:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "library")),

		AddChord:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add chord")),
		EditChord:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("e", "edit chord")),
		RemoveChord:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove chord")),
		NextQuality:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next quality")),
		PickRoot:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "root")),
		AddSection:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "add section")),
		RenameSection: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename section")),
		RemoveSection: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "remove section")),
		SectionUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move section up")),
		SectionDown:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move section down")),
		EditTitle:     key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "title")),
		EditAuthor:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "author")),

		TransposeUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "transpose up")),
		TransposeDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "transpose down")),
		TransposeReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset")),
		Notation:       key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "notation")),
		Visualizer:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "piano/guitar")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	switch k.mode {
	case viewEditor:
		return []key.Binding{k.AddChord, k.EditChord, k.NextQuality, k.TransposeUp, k.TransposeDown, k.Visualizer, k.Back, k.Help}
	case viewLibrary:
		return []key.Binding{k.Left, k.Right, k.Notation, k.Visualizer, k.Back, k.Help}
	default:
		return []key.Binding{k.Open, k.NewSong, k.DeleteSong, k.Library, k.Quit, k.Help}
	}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	display := []key.Binding{k.TransposeUp, k.TransposeDown, k.TransposeReset, k.Notation, k.Visualizer}
	switch k.mode {
	case viewEditor:
		return [][]key.Binding{
			{k.Up, k.Down, k.Left, k.Right},
			{k.AddChord, k.EditChord, k.RemoveChord, k.NextQuality, k.PickRoot},
			{k.AddSection, k.RenameSection, k.RemoveSection, k.SectionUp, k.SectionDown},
			{k.EditTitle, k.EditAuthor, k.Back, k.Help},
			display,
		}
	case viewLibrary:
		return [][]key.Binding{{k.Up, k.Down, k.Left, k.Right}, display, {k.Back, k.Quit, k.Help}}
	default:
		return [][]key.Binding{{k.Up, k.Down, k.Open}, {k.NewSong, k.DeleteSong, k.Library}, display, {k.Quit, k.Help}}
	}
}
