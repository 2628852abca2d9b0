// Package api serves the chord engine and the songbook over local HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/verte-zerg/chordmaster/internal/model"
	"github.com/verte-zerg/chordmaster/internal/songio"
	"github.com/verte-zerg/chordmaster/internal/store"
	"github.com/verte-zerg/chordmaster/internal/theory"
)

const maxBodyBytes = 8 << 20

type errorBody struct {
	Detail string `json:"detail"`
}

// Server holds the handlers' dependencies.
type Server struct {
	store *store.Store
	now   func() time.Time
}

// New creates a server backed by st.
func New(st *store.Store) *Server {
	return &Server{store: st, now: time.Now}
}

// Router registers every route.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chords/{symbol}", s.handleChord).Methods(http.MethodGet)
	api.HandleFunc("/qualities", s.handleQualities).Methods(http.MethodGet)
	api.HandleFunc("/songs", s.handleListSongs).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id}", s.handleGetSong).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id}", s.handlePutSong).Methods(http.MethodPut)
	api.HandleFunc("/songs/{id}", s.handleDeleteSong).Methods(http.MethodDelete)
	api.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/import", s.handleImport).Methods(http.MethodPost)
	return router
}

// Handler wraps the router with CORS for the configured origins.
func Handler(st *store.Store, cfg model.ServerConfig) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(New(st).Router())
}

func (s *Server) handleChord(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	q := r.URL.Query()

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid offset %q", raw))
			return
		}
		offset = n
	}
	notation := theory.Letter
	if raw := q.Get("notation"); raw != "" {
		n, ok := theory.ParseNotation(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid notation %q", raw))
			return
		}
		notation = n
	}
	writeJSON(w, http.StatusOK, theory.Analyze(symbol, offset, notation))
}

func (s *Server) handleQualities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, theory.Qualities())
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.store.ListSongs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if songs == nil {
		songs = []model.Song{}
	}
	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.store.GetSong(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handlePutSong(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var song model.Song
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&song); err != nil {
		writeError(w, http.StatusBadRequest, "invalid song: "+err.Error())
		return
	}
	if song.ID == "" {
		song.ID = id
	}
	if song.ID != id {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("song id %q does not match path id %q", song.ID, id))
		return
	}
	now := s.now().UnixMilli()
	if song.CreatedAt == 0 {
		song.CreatedAt = now
	}
	if song.LastModified == 0 {
		song.LastModified = now
	}
	song = songio.Normalize(song)
	if err := s.store.SaveSong(r.Context(), song); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSong(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	songs, err := s.store.ListSongs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", songio.ExportFileName(s.now())))
	// Best-effort write; the status line is already sent.
	_ = songio.Encode(w, songs)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	songs, err := songio.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	added, err := s.store.ImportSongs(r.Context(), songs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Best-effort encode.
	_ = json.NewEncoder(w).Encode(v)
}
