package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/store"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	s := New(st)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }
	return s, s.Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestChordEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/chords/Am7?offset=2&notation=solfege", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var a theory.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	require.Equal(t, "Sim7", a.Display)
	require.Equal(t, []int{11, 2, 6, 9}, a.Notes)
	require.True(t, a.RootRecognized)
	require.True(t, a.QualityRecognized)
}

func TestChordEndpointRejectsBadParams(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/chords/C?offset=up", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"detail"`)

	rec = do(t, h, http.MethodGet, "/api/chords/C?notation=roman", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQualitiesEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/qualities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var qs []theory.QualityInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &qs))
	require.Len(t, qs, len(theory.Qualities()))
	require.Equal(t, "", qs[0].Suffix)
	require.Equal(t, "m", qs[1].Suffix)
}

func TestSongLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/songs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]\n", rec.Body.String())

	body := `{"title":"Night","author":"Me","sections":[{"id":"v","name":"Verse 1","chords":[{"id":"c","originalValue":"Lam"}]}]}`
	rec = do(t, h, http.MethodPut, "/api/songs/s1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var saved model.Song
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.Equal(t, "s1", saved.ID)
	require.NotZero(t, saved.CreatedAt)

	rec = do(t, h, http.MethodGet, "/api/songs/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Song
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, saved, got)

	rec = do(t, h, http.MethodPut, "/api/songs/s1", `{"id":"other"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/songs/s1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/songs/s1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/songs/s1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportExport(t *testing.T) {
	s, h := newTestServer(t)
	require.NoError(t, s.store.SaveSong(context.Background(), model.Song{ID: "a", Title: "Kept", Sections: []model.Section{}}))

	payload := `[{"id":"a","title":"Dropped"},{"id":"b","title":"New"},{"title":"No id"}]`
	rec := do(t, h, http.MethodPost, "/api/import", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"added":1}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/import", `{"id":"c"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "chordmaster_export_2024-03-09.json")

	var songs []model.Song
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&songs))
	require.Len(t, songs, 2)
	titles := map[string]string{}
	for _, song := range songs {
		titles[song.ID] = song.Title
	}
	require.Equal(t, "Kept", titles["a"])
	require.Equal(t, "New", titles["b"])
}

func TestHandlerAllowsConfiguredOrigin(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "cors.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	h := Handler(st, model.ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}})
	r := httptest.NewRequest(http.MethodGet, "/api/qualities", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
