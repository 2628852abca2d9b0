// Package main provides the CLI entrypoint for chordmaster.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/chordmaster/internal/config"
	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/store"
	"github.com/verte-zerg/chordmaster/internal/theory"
	"github.com/verte-zerg/chordmaster/internal/tui"
)

const (
	defaultNotation   = "letter"
	defaultVisualizer = "piano"
	defaultAutosaveMs = 800
	defaultAddr       = "127.0.0.1:8787"
	defaultTop        = 10
	defaultBPM        = 100.0
	defaultBeats      = 4
)

var (
	editorNotation     string
	editorVisualizer   string
	editorTranspose    int
	editorAutosaveMs   int
	editorDark         bool
	editorShowProblems bool

	serveAddr    string
	serveOrigins []string

	importDryRun bool
	midiBPM      float64
	midiBeats    int
	statsTop     int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chordmaster",
		Short:         "Terminal songbook editor with chord diagrams",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runEditorCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&editorNotation, "notation", defaultNotation, "note names: letter or solfege")
	flags.StringVar(&editorVisualizer, "visualizer", defaultVisualizer, "diagram style: piano or guitar")
	flags.IntVar(&editorTranspose, "transpose", 0, "semitone offset applied to every chord")
	flags.IntVar(&editorAutosaveMs, "autosave-ms", defaultAutosaveMs, "autosave delay in milliseconds (0 saves every edit)")
	flags.BoolVar(&editorDark, "dark", false, "dark diagram grid")
	flags.BoolVar(&editorShowProblems, "show-problems", false, "highlight chords the engine cannot read")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newLibraryCmd())
	rootCmd.AddCommand(newSongsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newMidiCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// loadEditorConfig merges the config file under the command line flags.
func loadEditorConfig(cmd *cobra.Command) (model.Config, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "notation", &editorNotation, fileCfg.Editor.Notation)
	applyStringConfig(cmd, "visualizer", &editorVisualizer, fileCfg.Editor.Visualizer)
	applyIntConfig(cmd, "transpose", &editorTranspose, fileCfg.Editor.Transpose)
	applyIntConfig(cmd, "autosave-ms", &editorAutosaveMs, fileCfg.Editor.AutosaveMs)
	applyBoolConfig(cmd, "dark", &editorDark, fileCfg.Editor.Dark)
	applyBoolConfig(cmd, "show-problems", &editorShowProblems, fileCfg.Editor.ShowProblems)

	cfg, err := buildConfig(editorNotation, editorVisualizer, editorTranspose, editorAutosaveMs)
	if err != nil {
		return model.Config{}, config.FileConfig{}, err
	}
	cfg.Dark = editorDark
	cfg.ShowProblems = editorShowProblems
	return cfg, fileCfg, nil
}

func buildConfig(notation, visualizer string, transpose, autosaveMs int) (model.Config, error) {
	n, ok := theory.ParseNotation(notation)
	if !ok {
		return model.Config{}, fmt.Errorf("--notation must be letter or solfege, got %q", notation)
	}
	v := model.Visualizer(strings.ToLower(strings.TrimSpace(visualizer)))
	if v != model.Piano && v != model.Guitar {
		return model.Config{}, fmt.Errorf("--visualizer must be piano or guitar, got %q", visualizer)
	}
	if autosaveMs < 0 {
		return model.Config{}, fmt.Errorf("--autosave-ms must be >= 0")
	}
	return model.Config{
		Notation:   n,
		Visualizer: v,
		Transpose:  transpose,
		AutosaveMs: autosaveMs,
	}, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runEditorCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadEditorConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	program := tea.NewProgram(tui.NewModel(cfg, st), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applySliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# chordmaster configuration
# Uncomment a value to enable it. CLI flags override config values.

[editor]
# notation = %q        # Note names: letter or solfege
# visualizer = %q       # Diagram style: piano or guitar
# transpose = 0            # Semitone offset applied to every chord
# autosave-ms = %d        # Autosave delay in milliseconds (0 saves every edit)
# dark = false             # Dark diagram grid
# show-problems = false    # Highlight chords the engine cannot read

[server]
# addr = %q
# allowed-origins = ["http://localhost:5173"]
`,
		defaultNotation,
		defaultVisualizer,
		defaultAutosaveMs,
		defaultAddr,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
