// Package server exposes game sessions over HTTP.
//
//	GET    /health
//	GET    /games
//	POST   /sessions                      create a session from a game config
//	                                      (move_time as "1s" or nanoseconds)
//	GET    /sessions/{id}                 board, status and score
//	DELETE /sessions/{id}                 destroy and release resources
//	POST   /sessions/{id}/move            {"move": "H8"}
//	POST   /sessions/{id}/opponent        let the engine side reply
//	GET    /sessions/{id}/valid-moves
//	POST   /sessions/{id}/random-state
//	POST   /sessions/{id}/rule-state
//	GET    /results/{run}                 stored evaluation summary
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"playground/experiments/store"
	"playground/game"
	"playground/gamemaster"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct {
	r      *chi.Mux
	master *gamemaster.Master
	store  *store.Store
}

type Option func(*Server)

// WithStore enables the results endpoint.
func WithStore(st *store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

func New(master *gamemaster.Master, opts ...Option) *Server {
	s := &Server{r: chi.NewRouter(), master: master}
	for _, opt := range opts {
		opt(s)
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(30 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.master.Len()})
	})
	s.r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, gamemaster.Games())
	})

	s.r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDestroy)
			r.Post("/move", s.handleMove)
			r.Post("/opponent", s.handleOpponent)
			r.Get("/valid-moves", s.handleValidMoves)
			r.Post("/random-state", s.handleRandomState)
			r.Post("/rule-state", s.handleRuleState)
		})
	})
	s.r.Get("/results/{run}", s.handleResults)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.r }

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

type errorRes struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorRes{Error: msg})
}

// writeFailure maps session and game errors to HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamemaster.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrUnknownGame):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrEngineFailure):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
