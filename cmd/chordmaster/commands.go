package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/chordmaster/internal/api"
	"github.com/verte-zerg/chordmaster/internal/config"
	"github.com/verte-zerg/chordmaster/internal/diagram"
	"github.com/verte-zerg/chordmaster/internal/midiexport"
	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/report"
	"github.com/verte-zerg/chordmaster/internal/songio"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <chord>...",
		Short: "Print chords with notes and diagrams",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadEditorConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	r := diagram.Renderer{Color: report.UseColor(out, false), Dark: cfg.Dark}
	for i, arg := range args {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if err := writeChord(out, r, cfg, theory.Analyze(arg, cfg.Transpose, cfg.Notation)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func writeChord(w io.Writer, r diagram.Renderer, cfg model.Config, a theory.Analysis) error {
	lines := []string{
		fmt.Sprintf("%s (%s)", a.Display, a.QualityName),
		"Notes: " + noteNames(a.Notes, cfg.Notation),
		r.Chord(a, cfg.Visualizer),
	}
	if cfg.ShowProblems {
		for _, p := range a.Problems() {
			lines = append(lines, "! "+p)
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func noteNames(notes []int, notation theory.Notation) string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = theory.NoteAt(n).Name(notation)
	}
	return strings.Join(names, " ")
}

func fingeringString(f theory.Fingering) string {
	parts := make([]string, len(f))
	for i, fret := range f {
		if fret == theory.Muted {
			parts[i] = "x"
		} else {
			parts[i] = strconv.Itoa(fret)
		}
	}
	return strings.Join(parts, " ")
}

func newLibraryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "library [root]",
		Short: "List every chord quality for a root",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLibraryCmd,
	}
}

func runLibraryCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadEditorConfig(cmd)
	if err != nil {
		return err
	}
	root := 0
	if len(args) == 1 {
		idx, ok := theory.NoteIndex(args[0])
		if !ok {
			return fmt.Errorf("unknown root %q", args[0])
		}
		root = idx
	}
	letter := theory.NoteAt(root).Letter

	rows := [][]string{}
	for _, q := range theory.Qualities() {
		a := theory.Analyze(letter+q.Suffix, cfg.Transpose, cfg.Notation)
		rows = append(rows, []string{a.Display, q.Name, noteNames(a.Notes, cfg.Notation), fingeringString(a.Fingering)})
	}
	for _, line := range report.FormatTable([]string{"Chord", "Quality", "Notes", "Guitar"}, rows, nil) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newSongsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "songs",
		Short: "List songs, most recently edited first",
		Args:  cobra.NoArgs,
		RunE:  runSongsCmd,
	}
}

func runSongsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	songs, err := st.ListSongs(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}
	if len(songs) == 0 {
		logErrln("No songs found.")
		return nil
	}
	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{
			s.ID,
			s.Title,
			s.Author,
			strconv.Itoa(len(s.Sections)),
			strconv.Itoa(s.ChordCount()),
			time.UnixMilli(s.LastModified).Format("2006-01-02 15:04"),
		})
	}
	headers := []string{"ID", "Title", "Author", "Sections", "Chords", "Modified"}
	for _, line := range report.FormatTable(headers, rows, map[int]bool{3: true, 4: true}) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every song to a JSON file (- for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	songs, err := st.ListSongs(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	path := filepath.Join(config.DefaultExportDir(), songio.ExportFileName(time.Now()))
	if len(args) == 1 {
		path = args[0]
	}
	if path == "-" {
		return songio.Encode(cmd.OutOrStdout(), songs)
	}
	if err := writeExport(path, songs); err != nil {
		return err
	}
	logErrf("Exported %d songs to %s\n", len(songs), path)
	return nil
}

func writeExport(path string, songs []model.Song) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "export-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := songio.Encode(writer, songs); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add songs from a JSON export, skipping ids already present",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report what would be added without writing")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() {
		// Best-effort close; the file is only read.
		_ = f.Close()
	}()
	imported, err := songio.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if importDryRun {
		existing, err := st.ListSongs(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list songs: %w", err)
		}
		_, added := songio.Merge(existing, imported)
		logErrf("Would import %d of %d songs\n", added, len(imported))
		return nil
	}
	added, err := st.ImportSongs(cmd.Context(), imported)
	if err != nil {
		return fmt.Errorf("failed to import songs: %w", err)
	}
	logErrf("Imported %d of %d songs\n", added, len(imported))
	return nil
}

func newMidiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "midi <song-id> <file>",
		Short: "Write a song's progression as a MIDI file",
		Args:  cobra.ExactArgs(2),
		RunE:  runMidiCmd,
	}
	cmd.Flags().Float64Var(&midiBPM, "bpm", defaultBPM, "tempo in beats per minute")
	cmd.Flags().IntVar(&midiBeats, "beats", defaultBeats, "beats per chord")
	return cmd
}

func runMidiCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadEditorConfig(cmd)
	if err != nil {
		return err
	}
	if midiBPM <= 0 {
		return fmt.Errorf("--bpm must be > 0")
	}
	if midiBeats <= 0 {
		return fmt.Errorf("--beats must be > 0")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	song, err := st.GetSong(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load song %s: %w", args[0], err)
	}

	opts := midiexport.DefaultOptions()
	opts.BPM = midiBPM
	opts.BeatsPerChord = midiBeats
	opts.Offset = cfg.Transpose

	if err := writeMidi(args[1], song, opts); err != nil {
		return err
	}
	logErrf("Wrote %s\n", args[1])
	return nil
}

// writeMidi renders the song before touching path, so a song without chords
// leaves no file behind.
func writeMidi(path string, song model.Song, opts midiexport.Options) error {
	var buf bytes.Buffer
	if err := midiexport.Write(&buf, song, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write midi file: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show songbook stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsTop, "top", defaultTop, "number of most used chords to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	rep, err := report.BuildReport(cmd.Context(), st)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	opts := report.RenderOptions{
		Top:      statsTop,
		Width:    report.TerminalWidth(),
		UseColor: report.UseColor(out, false),
	}
	return report.Render(out, rep, opts)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chord engine and songbook over local HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origin (repeatable)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	_, fileCfg, err := loadEditorConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	applySliceConfig(cmd, "origin", &serveOrigins, fileCfg.Server.AllowedOrigins)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           api.Handler(st, model.ServerConfig{Addr: serveAddr, AllowedOrigins: serveOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logErrf("Serving on http://%s\n", serveAddr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
