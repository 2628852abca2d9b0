// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/chordmaster/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a song id does not exist.
var ErrNotFound = errors.New("song not found")

// Store wraps SQLite access for the song collection.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// One connection serializes autosave and API writers.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_modified INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sections (
			id TEXT NOT NULL,
			song_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (song_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS chords (
			id TEXT NOT NULL,
			song_id TEXT NOT NULL,
			section_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			original_value TEXT NOT NULL,
			PRIMARY KEY (song_id, section_id, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_songs_last_modified ON songs(last_modified);`,
		`CREATE INDEX IF NOT EXISTS idx_chords_value ON chords(original_value);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSong inserts or replaces a song with all of its sections and chords.
func (s *Store) SaveSong(ctx context.Context, song model.Song) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := writeSong(ctx, tx, song); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			// Best-effort rollback.
			_ = rerr
		}
		return err
	}
	return tx.Commit()
}

// ImportSongs adds songs whose ids are not yet stored and returns how many
// were added. Existing songs are left untouched. A song that fails to write
// is skipped without discarding the others.
func (s *Store) ImportSongs(ctx context.Context, songs []model.Song) (added int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, song := range songs {
		var exists int
		if err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM songs WHERE id = ?`, song.ID).Scan(&exists); err != nil {
			return 0, err
		}
		if exists > 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx, `SAVEPOINT import_song`); err != nil {
			return 0, err
		}
		if werr := writeSong(ctx, tx, song); werr != nil {
			if _, err = tx.ExecContext(ctx, `ROLLBACK TO import_song`); err != nil {
				return 0, err
			}
		} else {
			added++
		}
		if _, err = tx.ExecContext(ctx, `RELEASE import_song`); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func writeSong(ctx context.Context, tx *sql.Tx, song model.Song) error {
	if song.ID == "" {
		return fmt.Errorf("song id is empty")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO songs (id, title, author, created_at, last_modified)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			created_at = excluded.created_at,
			last_modified = excluded.last_modified`,
		song.ID, song.Title, song.Author, song.CreatedAt, song.LastModified,
	); err != nil {
		return err
	}
	for _, stmt := range []string{`DELETE FROM chords WHERE song_id = ?`, `DELETE FROM sections WHERE song_id = ?`} {
		if _, err := tx.ExecContext(ctx, stmt, song.ID); err != nil {
			return err
		}
	}

	secStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (id, song_id, position, name) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := secStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	chordStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chords (id, song_id, section_id, position, original_value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := chordStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for i, sec := range song.Sections {
		if _, err := secStmt.ExecContext(ctx, sec.ID, song.ID, i, sec.Name); err != nil {
			return fmt.Errorf("section %s: %w", sec.ID, err)
		}
		for j, c := range sec.Chords {
			if _, err := chordStmt.ExecContext(ctx, c.ID, song.ID, sec.ID, j, c.OriginalValue); err != nil {
				return fmt.Errorf("chord %s: %w", c.ID, err)
			}
		}
	}
	return nil
}

// DeleteSong removes a song and everything in it.
func (s *Store) DeleteSong(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	for _, stmt := range []string{`DELETE FROM chords WHERE song_id = ?`, `DELETE FROM sections WHERE song_id = ?`} {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSong loads a single song.
func (s *Store) GetSong(ctx context.Context, id string) (model.Song, error) {
	songs, err := s.loadSongs(ctx, "WHERE id = ?", id)
	if err != nil {
		return model.Song{}, err
	}
	if len(songs) == 0 {
		return model.Song{}, ErrNotFound
	}
	return songs[0], nil
}

// ListSongs returns every song, most recently modified first.
func (s *Store) ListSongs(ctx context.Context) ([]model.Song, error) {
	return s.loadSongs(ctx, "")
}

func (s *Store) loadSongs(ctx context.Context, where string, args ...any) ([]model.Song, error) {
	query := fmt.Sprintf(`SELECT id, title, author, created_at, last_modified
		FROM songs %s
		ORDER BY last_modified DESC, id ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var songs []model.Song
	for rows.Next() {
		var song model.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Author, &song.CreatedAt, &song.LastModified); err != nil {
			return nil, err
		}
		song.Sections = []model.Section{}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return songs, nil
	}

	ids := make([]string, len(songs))
	index := make(map[string]int, len(songs))
	for i, song := range songs {
		ids[i] = song.ID
		index[song.ID] = i
	}
	if err := s.attachSections(ctx, songs, index, ids); err != nil {
		return nil, err
	}
	return songs, nil
}

func (s *Store) attachSections(ctx context.Context, songs []model.Song, index map[string]int, ids []string) error {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")

	secRows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT song_id, id, name FROM sections
		WHERE song_id IN (%s) ORDER BY song_id, position`, in), args...)
	if err != nil {
		return err
	}
	secIndex := map[string]map[string]int{}
	for secRows.Next() {
		var songID string
		var sec model.Section
		if err := secRows.Scan(&songID, &sec.ID, &sec.Name); err != nil {
			_ = secRows.Close()
			return err
		}
		sec.Chords = []model.Chord{}
		i := index[songID]
		if secIndex[songID] == nil {
			secIndex[songID] = map[string]int{}
		}
		secIndex[songID][sec.ID] = len(songs[i].Sections)
		songs[i].Sections = append(songs[i].Sections, sec)
	}
	if err := secRows.Err(); err != nil {
		_ = secRows.Close()
		return err
	}
	if err := secRows.Close(); err != nil {
		return err
	}

	chordRows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT song_id, section_id, id, original_value FROM chords
		WHERE song_id IN (%s) ORDER BY song_id, section_id, position`, in), args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := chordRows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for chordRows.Next() {
		var songID, sectionID string
		var c model.Chord
		if err := chordRows.Scan(&songID, &sectionID, &c.ID, &c.OriginalValue); err != nil {
			return err
		}
		si, ok := secIndex[songID][sectionID]
		if !ok {
			continue
		}
		sec := &songs[index[songID]].Sections[si]
		sec.Chords = append(sec.Chords, c)
	}
	return chordRows.Err()
}

// ChordUsage counts chord symbols across all songs, most frequent first.
func (s *Store) ChordUsage(ctx context.Context) ([]model.ChordAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT original_value, COUNT(1), COUNT(DISTINCT song_id)
		FROM chords
		GROUP BY original_value
		ORDER BY COUNT(1) DESC, original_value ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ChordAggregate
	for rows.Next() {
		var agg model.ChordAggregate
		if err := rows.Scan(&agg.Symbol, &agg.Count, &agg.Songs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Stats counts songs, sections and chords.
func (s *Store) Stats(ctx context.Context) (model.SongStats, error) {
	var st model.SongStats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(1) FROM songs),
		(SELECT COUNT(1) FROM sections),
		(SELECT COUNT(1) FROM chords)`).Scan(&st.Songs, &st.Sections, &st.Chords)
	return st, err
}
