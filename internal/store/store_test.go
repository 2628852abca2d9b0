package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chordmaster/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "chordmaster.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func song(id string, modified int64, chords ...string) model.Song {
	sec := model.Section{ID: "s-" + id, Name: "Verse 1", Chords: []model.Chord{}}
	for i, c := range chords {
		sec.Chords = append(sec.Chords, model.Chord{ID: id + "-" + string(rune('a'+i)), OriginalValue: c})
	}
	return model.Song{
		ID:           id,
		Title:        "Song " + id,
		Author:       "Someone",
		Sections:     []model.Section{sec, {ID: "s2-" + id, Name: "Chorus", Chords: []model.Chord{}}},
		CreatedAt:    1,
		LastModified: modified,
	}
}

func TestSaveAndGetSong(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	in := song("one", 10, "Am", "F", "C", "G")
	require.NoError(t, st.SaveSong(ctx, in))

	got, err := st.GetSong(ctx, "one")
	require.NoError(t, err)
	require.Equal(t, in, got)

	in.Title = "Renamed"
	in.Sections = in.Sections[:1]
	in.Sections[0].Chords = in.Sections[0].Chords[:2]
	require.NoError(t, st.SaveSong(ctx, in))
	got, err = st.GetSong(ctx, "one")
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
	require.Len(t, got.Sections, 1)
	require.Len(t, got.Sections[0].Chords, 2)
}

func TestListSongsOrder(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveSong(ctx, song("old", 10, "C")))
	require.NoError(t, st.SaveSong(ctx, song("new", 30, "D")))
	require.NoError(t, st.SaveSong(ctx, song("mid", 20, "E")))

	songs, err := st.ListSongs(ctx)
	require.NoError(t, err)
	require.Len(t, songs, 3)
	require.Equal(t, []string{"new", "mid", "old"}, []string{songs[0].ID, songs[1].ID, songs[2].ID})
	require.Equal(t, "E", songs[1].Sections[0].Chords[0].OriginalValue)
}

func TestImportSkipsExisting(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveSong(ctx, song("keep", 10, "C")))

	incoming := song("keep", 99, "Bm")
	incoming.Title = "overwritten?"
	added, err := st.ImportSongs(ctx, []model.Song{incoming, song("fresh", 5, "G")})
	require.NoError(t, err)
	require.Equal(t, 1, added)

	got, err := st.GetSong(ctx, "keep")
	require.NoError(t, err)
	require.Equal(t, "Song keep", got.Title)
	require.Equal(t, "C", got.Sections[0].Chords[0].OriginalValue)
}

func TestImportSkipsBrokenSong(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	broken := song("broken", 3, "C", "G")
	broken.Sections[0].Chords[1].ID = broken.Sections[0].Chords[0].ID
	added, err := st.ImportSongs(ctx, []model.Song{song("first", 1, "Am"), broken, song("last", 2, "F")})
	require.NoError(t, err)
	require.Equal(t, 2, added)

	_, err = st.GetSong(ctx, "broken")
	require.True(t, errors.Is(err, ErrNotFound))
	got, err := st.GetSong(ctx, "last")
	require.NoError(t, err)
	require.Equal(t, "F", got.Sections[0].Chords[0].OriginalValue)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, model.SongStats{Songs: 2, Sections: 4, Chords: 2}, stats)
}

func TestConcurrentSaves(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	const workers, saves = 16, 20
	errs := make(chan error, workers*saves)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("song-%d", w)
			for i := 0; i < saves; i++ {
				errs <- st.SaveSong(ctx, song(id, int64(i), "C", "G"))
				if _, err := st.GetSong(ctx, id); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	songs, err := st.ListSongs(ctx)
	require.NoError(t, err)
	require.Len(t, songs, workers)
}

func TestDeleteSong(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveSong(ctx, song("gone", 10, "C", "G")))
	require.NoError(t, st.DeleteSong(ctx, "gone"))

	_, err := st.GetSong(ctx, "gone")
	require.True(t, errors.Is(err, ErrNotFound))
	require.True(t, errors.Is(st.DeleteSong(ctx, "gone"), ErrNotFound))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, model.SongStats{}, stats)
}

func TestChordUsage(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveSong(ctx, song("a", 1, "C", "G", "C")))
	require.NoError(t, st.SaveSong(ctx, song("b", 2, "C", "Am")))

	usage, err := st.ChordUsage(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ChordAggregate{Symbol: "C", Count: 3, Songs: 2}, usage[0])
	require.Len(t, usage, 3)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, model.SongStats{Songs: 2, Sections: 4, Chords: 5}, stats)
}
