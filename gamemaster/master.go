package gamemaster

import (
	"context"
	"errors"
	"sync"
	"time"

	"playground/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one live game. Calls on a session are serialized so a game is
// only ever driven by one flow at a time.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	game     game.Game
	lastUsed time.Time
}

// View is a point-in-time description of a session.
type View struct {
	ID     string        `json:"id"`
	Info   game.Info     `json:"info"`
	Status game.Status   `json:"status"`
	Score  int           `json:"score"`
	Board  game.Snapshot `json:"board"`
}

func (s *Session) view() View {
	return View{
		ID:     s.ID,
		Info:   s.game.Info(),
		Status: s.game.Status(),
		Score:  s.game.Score(),
		Board:  s.game.Board(),
	}
}

// Master owns every live session and evicts the ones left idle longer than
// the configured ttl.
type Master struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	newGame  func(game.Config) (game.Game, error)
}

type Option func(*Master)

func WithTTL(ttl time.Duration) Option {
	return func(m *Master) {
		m.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Master) {
		m.now = now
	}
}

// WithFactory replaces the registry lookup, mostly for tests.
func WithFactory(newGame func(game.Config) (game.Game, error)) Option {
	return func(m *Master) {
		m.newGame = newGame
	}
}

func NewMaster(opts ...Option) *Master {
	m := &Master{
		sessions: make(map[string]*Session),
		ttl:      30 * time.Minute,
		now:      time.Now,
		newGame:  NewGame,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Master) Create(cfg game.Config) (View, error) {
	g, err := m.newGame(cfg)
	if err != nil {
		return View{}, err
	}
	now := m.now()
	s := &Session{ID: uuid.NewString(), Created: now, game: g, lastUsed: now}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Info().Str("session", s.ID).Str("game", cfg.Name).Msg("session created")
	return s.view(), nil
}

func (m *Master) session(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// with runs fn while holding the session lock.
func (m *Master) with(id string, fn func(g game.Game) error) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = m.now()
	err = fn(s.game)
	return s.view(), err
}

func (m *Master) Get(id string) (View, error) {
	return m.with(id, func(game.Game) error { return nil })
}

// ApplyMove plays the human move. A rejected move reports InvalidMove while
// the session keeps its previous status.
func (m *Master) ApplyMove(id, text string) (game.Status, View, error) {
	var status game.Status
	view, err := m.with(id, func(g game.Game) error {
		var err error
		status, err = g.ApplyMove(text)
		if err != nil {
			log.Debug().Str("session", id).Str("move", text).Err(err).Msg("move rejected")
		}
		return err
	})
	return status, view, err
}

func (m *Master) OpponentMove(ctx context.Context, id string) ([]string, View, error) {
	var moves []string
	view, err := m.with(id, func(g game.Game) error {
		var err error
		moves, err = g.OpponentMove(ctx)
		if err != nil {
			log.Warn().Str("session", id).Err(err).Msg("opponent move failed")
		}
		return err
	})
	return moves, view, err
}

func (m *Master) ValidMoves(id string) ([]string, error) {
	var moves []string
	_, err := m.with(id, func(g game.Game) error {
		moves = g.ValidMoves()
		return nil
	})
	return moves, err
}

func (m *Master) GenerateRandomState(id string) (View, error) {
	return m.with(id, func(g game.Game) error {
		g.GenerateRandomState()
		return nil
	})
}

func (m *Master) GenerateRuleState(id string) (View, []string, error) {
	var moves []string
	view, err := m.with(id, func(g game.Game) error {
		_, moves = g.GenerateRuleState()
		return nil
	})
	return view, moves, err
}

// Destroy removes the session and releases its game's resources.
func (m *Master) Destroy(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return closeSession(s)
}

func closeSession(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.game.Close(); err != nil {
		log.Error().Str("session", s.ID).Err(err).Msg("closing game")
		return err
	}
	log.Info().Str("session", s.ID).Msg("session closed")
	return nil
}

func (m *Master) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict closes sessions idle for longer than the ttl and returns how many
// were removed.
func (m *Master) Evict() int {
	deadline := m.now().Add(-m.ttl)
	var stale []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastUsed.Before(deadline)
		s.mu.Unlock()
		if idle {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		_ = closeSession(s)
	}
	return len(stale)
}

// Run evicts idle sessions every interval until ctx is done, then closes
// whatever is left.
func (m *Master) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := m.Evict(); n > 0 {
				log.Info().Msgf("evicted %d idle sessions", n)
			}
		case <-ctx.Done():
			m.Shutdown()
			return
		}
	}
}

func (m *Master) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		_ = closeSession(s)
	}
}
