package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"playground/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

/*
Test cases:
- random agent picks from the legal list and fails without one
- scripted agent replays then repeats its last move
- remote agent extracts the movement, falls back to raw text, reports HTTP errors
- the agent handler round-trips through the remote agent
*/

func TestRandom(t *testing.T) {
	a := NewRandom(rand.New(rand.NewSource(1)))
	legal := []string{"A1", "B2", "C3"}
	for i := 0; i < 20; i++ {
		move, err := a.NextMove(context.Background(), Request{Legal: legal})
		require.NoError(t, err)
		require.Contains(t, legal, move)
	}
	_, err := a.NextMove(context.Background(), Request{})
	require.ErrorIs(t, err, ErrNoMoves)
}

func TestScripted(t *testing.T) {
	a := NewScripted("A1", "B2")
	ctx := context.Background()
	for _, want := range []string{"A1", "B2", "B2"} {
		move, err := a.NextMove(ctx, Request{})
		require.NoError(t, err)
		require.Equal(t, want, move)
	}
	_, err := NewScripted().NextMove(ctx, Request{})
	require.ErrorIs(t, err, ErrNoMoves)
}

func replying(t *testing.T, status int, output string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, game.Gomoku, req.Game)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(Reply{Output: output})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemote(t *testing.T) {
	req := Request{Game: game.Gomoku, Step: 1, Legal: []string{"H8"}}

	t.Run("movement line is extracted", func(t *testing.T) {
		srv := replying(t, http.StatusOK, "The centre is strongest.\nMovement: h8")
		move, err := NewRemote(srv.URL).NextMove(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "h8", move)
	})

	t.Run("unparseable output is passed through", func(t *testing.T) {
		srv := replying(t, http.StatusOK, "  I resign  ")
		move, err := NewRemote(srv.URL).NextMove(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "I resign", move)
	})

	t.Run("http failure is an error", func(t *testing.T) {
		srv := replying(t, http.StatusInternalServerError, "")
		_, err := NewRemote(srv.URL, WithTimeout(time.Second)).NextMove(context.Background(), req)
		require.Error(t, err)
	})
}

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(Handler(NewScripted("8H")))
	defer srv.Close()

	move, err := NewRemote(srv.URL+"/move").NextMove(context.Background(), Request{Game: game.Gomoku})
	require.NoError(t, err)
	require.Equal(t, "8H", move)
}
