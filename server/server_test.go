package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"playground/experiments/metrics"
	"playground/experiments/store"
	"playground/game"
	"playground/gamemaster"

	"github.com/stretchr/testify/require"
)

/*
Test cases:
- health and game listing
- full tic-tac-toe session: create, move, reject, opponent, valid moves, destroy
- synthetic states through the session routes
- chess sessions take a readable move time and long SAN
- unknown sessions and games map to 404 and 400
- results summary from the store
*/

func newServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(gamemaster.NewMaster(), opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	var health map[string]any
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/health", nil, &health))
	require.Equal(t, true, health["ok"])

	var names []string
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/games", nil, &names))
	require.ElementsMatch(t, game.Names, names)
}

func TestSession(t *testing.T) {
	srv := newServer(t)

	var view gamemaster.View
	code := call(t, http.MethodPost, srv.URL+"/sessions",
		game.Config{Name: game.TicTacToe, Seed: 2, HumanMark: "X"}, &view)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, view.ID)
	require.Equal(t, game.InProgress, view.Status)
	base := srv.URL + "/sessions/" + view.ID

	var moved moveRes
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/move", moveReq{Move: "2b"}, &moved))
	require.Equal(t, game.InProgress, moved.Status)
	require.Empty(t, moved.Error)
	require.Equal(t, 1, moved.View.Board.Grid[1][1])

	var rejected moveRes
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/move", moveReq{Move: "B2"}, &rejected))
	require.Equal(t, game.InvalidMove, rejected.Status)
	require.NotEmpty(t, rejected.Error)
	require.Equal(t, game.InProgress, rejected.View.Status)

	var reply opponentRes
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/opponent", nil, &reply))
	require.Len(t, reply.Moves, 1)

	var valid []string
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, base+"/valid-moves", nil, &valid))
	require.Len(t, valid, 7)

	var rule ruleStateRes
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/rule-state", nil, &rule))
	require.NotEmpty(t, rule.ValidMoves)

	var random gamemaster.View
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/random-state", nil, &random))
	require.Len(t, random.Board.Grid, 3)

	require.Equal(t, http.StatusNoContent, call(t, http.MethodDelete, base, nil, nil))
	var missing errorRes
	require.Equal(t, http.StatusNotFound, call(t, http.MethodGet, base, nil, &missing))
	require.Contains(t, missing.Error, "session not found")
}

func TestCreateChess(t *testing.T) {
	srv := newServer(t)
	var view gamemaster.View
	body := json.RawMessage(`{"name":"chess","seed":3,"move_time":"1s"}`)
	require.Equal(t, http.StatusCreated, call(t, http.MethodPost, srv.URL+"/sessions", body, &view))
	require.Equal(t, game.InProgress, view.Status)
	require.NotEmpty(t, view.Board.FEN)

	var moved moveRes
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, srv.URL+"/sessions/"+view.ID+"/move", moveReq{Move: "Ng1f3"}, &moved))
	require.Equal(t, game.InProgress, moved.Status)
	require.Empty(t, moved.Error)
	require.Equal(t, http.StatusNoContent, call(t, http.MethodDelete, srv.URL+"/sessions/"+view.ID, nil, nil))

	var res errorRes
	require.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, srv.URL+"/sessions",
		json.RawMessage(`{"name":"chess","move_time":"soon"}`), &res))
	require.Contains(t, res.Error, "move_time")
}

func TestErrors(t *testing.T) {
	srv := newServer(t)
	var res errorRes
	require.Equal(t, http.StatusBadRequest,
		call(t, http.MethodPost, srv.URL+"/sessions", game.Config{Name: "go"}, &res))
	require.Contains(t, res.Error, "unknown game")

	require.Equal(t, http.StatusNotFound,
		call(t, http.MethodPost, srv.URL+"/sessions/nope/move", moveReq{Move: "A1"}, &res))
	require.Equal(t, http.StatusNotFound,
		call(t, http.MethodGet, srv.URL+"/results/any", nil, &res))
}

func TestResults(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer db.Close()
	now := time.Now()
	_, err = db.SaveGame(context.Background(), "run-1", "random",
		metrics.GameMetric{Game: game.Sudoku, Status: "WIN", Score: 1000, StartTime: now, EndTime: now}, nil)
	require.NoError(t, err)

	srv := newServer(t, WithStore(db))
	var summary []store.Summary
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, srv.URL+"/results/run-1", nil, &summary))
	require.Len(t, summary, 1)
	require.Equal(t, 1, summary[0].Wins)
}
