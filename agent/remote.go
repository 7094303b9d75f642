package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"playground/game/codec"

	"github.com/rs/zerolog/log"
)

// Reply is the body a remote agent answers with. Output is free text that
// should contain a "Movement: <move>" line.
type Reply struct {
	Output string `json:"output"`
}

// Remote posts each request to an HTTP endpoint and extracts the move from
// the reply.
type Remote struct {
	url    string
	client *http.Client
}

type RemoteOption func(*Remote)

func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = client
	}
}

func WithTimeout(timeout time.Duration) RemoteOption {
	return func(r *Remote) {
		r.client = &http.Client{Timeout: timeout}
	}
}

func NewRemote(url string, opts ...RemoteOption) *Remote {
	r := &Remote{url: url, client: &http.Client{Timeout: time.Minute}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NextMove returns the extracted move, or the trimmed raw output when no move
// can be found so the game reports it as a parse error.
func (r *Remote) NextMove(ctx context.Context, req Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("agent answered %s", resp.Status)
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("failed to decode agent reply: %w", err)
	}
	move, err := codec.ExtractMovement(req.Game, reply.Output)
	if err != nil {
		log.Debug().Str("game", req.Game).Str("output", reply.Output).Err(err).Msg("no move in agent output")
		return strings.TrimSpace(reply.Output), nil
	}
	return move, nil
}
