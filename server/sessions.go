package server

import (
	"encoding/json"
	"net/http"

	"playground/game"
	"playground/gamemaster"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var cfg game.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	view, err := s.master.Create(cfg)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := s.master.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request) {
	if err := s.master.Destroy(chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveReq struct {
	Move string `json:"move"`
}

// moveRes reports the outcome of one move. A rejected move is a normal
// outcome: Status is INVALID_MOVE and Error says why.
type moveRes struct {
	Status game.Status     `json:"status"`
	Error  string          `json:"error,omitempty"`
	View   gamemaster.View `json:"session"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	status, view, err := s.master.ApplyMove(chi.URLParam(r, "id"), req.Move)
	if view.ID == "" {
		writeFailure(w, err)
		return
	}
	res := moveRes{Status: status, View: view}
	if err != nil {
		res.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, res)
}

type opponentRes struct {
	Moves []string        `json:"moves"`
	View  gamemaster.View `json:"session"`
}

func (s *Server) handleOpponent(w http.ResponseWriter, r *http.Request) {
	moves, view, err := s.master.OpponentMove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if moves == nil {
		moves = []string{}
	}
	writeJSON(w, http.StatusOK, opponentRes{Moves: moves, View: view})
}

func (s *Server) handleValidMoves(w http.ResponseWriter, r *http.Request) {
	moves, err := s.master.ValidMoves(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moves)
}

func (s *Server) handleRandomState(w http.ResponseWriter, r *http.Request) {
	view, err := s.master.GenerateRandomState(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type ruleStateRes struct {
	View       gamemaster.View `json:"session"`
	ValidMoves []string        `json:"valid_moves"`
}

func (s *Server) handleRuleState(w http.ResponseWriter, r *http.Request) {
	view, moves, err := s.master.GenerateRuleState(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ruleStateRes{View: view, ValidMoves: moves})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no results database configured")
		return
	}
	summary, err := s.store.Summarize(r.Context(), chi.URLParam(r, "run"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
