package agent

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Handler serves a as a remote agent on POST /move, answering in the same
// format Remote expects. Requests carry no legal move list, so a must not
// depend on one.
func Handler(a Agent) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/move", func(w http.ResponseWriter, req *http.Request) {
		var payload Request
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		move, err := a.NextMove(req.Context(), payload)
		if err != nil {
			log.Warn().Err(err).Str("game", payload.Game).Msg("agent has no move")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(Reply{Output: "Movement: " + move}); err != nil {
			log.Error().Err(err).Msg("failed to encode agent reply")
		}
	})
	return r
}
