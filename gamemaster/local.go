// Package gamemaster hosts concurrent game sessions for callers outside the
// training loop: humans submitting moves and registered agents asked to move.
package gamemaster

import (
	"blokus/codec"
	"blokus/game"
	"blokus/player"
	"blokus/searcher"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("game session not found")

// Human marks a seat whose moves arrive through Play and Pass.
const Human = ""

type session struct {
	sync.Mutex
	state   *game.GameState
	players []player.Player
	updates [][]searcher.Segment
	created time.Time
}

// SessionInfo is a snapshot of a session.
type SessionInfo struct {
	ID      string
	Seats   []string
	Current int
	Status  game.Status
	Scores  []int
	Turn    int
	Created time.Time
}

// Manager owns game sessions. Each session serializes its own mutations;
// sessions proceed independently.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	registry *player.Registry
}

// NewManager returns a manager that builds agent seats from registry, which
// may be nil when every seat is human.
func NewManager(registry *player.Registry) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		registry: registry,
	}
}

// NewGame starts a game with one seat per entry of seats: a registry agent id
// or Human. Agents are loaded up front so bad ids fail here.
func (m *Manager) NewGame(boardSize int, seats []string) (string, error) {
	configs := make([]game.PlayerConfig, len(seats))
	for i, id := range seats {
		configs[i].Agent = id
	}
	state, err := game.NewGame(boardSize, configs, 0)
	if err != nil {
		return "", err
	}

	players := make([]player.Player, len(seats))
	for i, id := range seats {
		if id == Human {
			continue
		}
		if m.registry == nil {
			return "", fmt.Errorf("%w: %q (no registry)", player.ErrUnknownAgent, id)
		}
		p, err := m.registry.Load(id, boardSize)
		if err != nil {
			return "", err
		}
		players[i] = p
	}

	id := uuid.NewString()
	s := &session{
		state:   state,
		players: players,
		updates: make([][]searcher.Segment, len(seats)),
		created: time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Info().Str("session", id).Int("board_size", boardSize).Strs("seats", seats).Msg("game created")
	return id, nil
}

func (m *Manager) get(id string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// with runs f on the session under its lock.
func (m *Manager) with(id string, f func(s *session) error) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	return f(s)
}

// State returns a copy of the session's game.
func (m *Manager) State(id string) (*game.GameState, error) {
	var state *game.GameState
	err := m.with(id, func(s *session) error {
		state = s.state.Copy()
		return nil
	})
	return state, err
}

func (m *Manager) Info(id string) (SessionInfo, error) {
	var info SessionInfo
	err := m.with(id, func(s *session) error {
		seats := make([]string, len(s.state.Players))
		for i, p := range s.state.Players {
			seats[i] = p.Agent
		}
		info = SessionInfo{
			ID:      id,
			Seats:   seats,
			Current: s.state.Current,
			Status:  s.state.Status,
			Scores:  s.state.Scores(),
			Turn:    s.state.TurnNumber(),
			Created: s.created,
		}
		return nil
	})
	return info, err
}

// List returns the ids of all sessions, oldest first.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.sessions[ids[i]], m.sessions[ids[j]]
		if a.created.Equal(b.created) {
			return ids[i] < ids[j]
		}
		return a.created.Before(b.created)
	})
	return ids
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	log.Debug().Str("session", id).Msg("game deleted")
	return nil
}

func (m *Manager) LegalMoves(id string) ([]game.Move, error) {
	var moves []game.Move
	err := m.with(id, func(s *session) error {
		moves = s.state.LegalMoves()
		return nil
	})
	return moves, err
}

// Play applies move for the player to move. Rejected moves leave the game
// unchanged and return the rules error.
func (m *Manager) Play(id string, move game.Move) error {
	return m.with(id, func(s *session) error {
		return s.apply(move)
	})
}

// Pass gives up the current player's turn for the rest of the game.
func (m *Manager) Pass(id string) error {
	return m.with(id, func(s *session) error {
		if err := s.state.ForcePass(); err != nil {
			return err
		}
		log.Debug().Str("session", id).Msgf("player passed, player %d to move", s.state.Current)
		return nil
	})
}

// PlayAgent asks the agent seated at the current turn for a move and plays
// it. It fails for human seats.
func (m *Manager) PlayAgent(id string) (game.Move, error) {
	var move game.Move
	err := m.with(id, func(s *session) error {
		if s.state.IsOver() {
			return game.ErrGameOver
		}
		current := s.state.Current
		p := s.players[current]
		if p == nil {
			return fmt.Errorf("%w: seat %d is human", player.ErrUnknownAgent, current)
		}
		move, _ = p.FindMove(s.state.Copy(), s.updates[current])
		s.updates[current] = nil
		return s.apply(move)
	})
	return move, err
}

func (m *Manager) Scores(id string) ([]int, error) {
	var scores []int
	err := m.with(id, func(s *session) error {
		scores = s.state.Scores()
		return nil
	})
	return scores, err
}

// Winner reports the unique top scorer of a finished game.
func (m *Manager) Winner(id string) (int, bool, error) {
	winner, ok := -1, false
	err := m.with(id, func(s *session) error {
		if s.state.IsOver() {
			if w, has := s.state.Winner(); has {
				winner, ok = w, true
			}
		}
		return nil
	})
	return winner, ok, err
}

// Observe encodes the game for perspective along with the mask of the
// player to move.
func (m *Manager) Observe(id string, perspective int) (codec.Tensor, codec.Mask, error) {
	var obs codec.Tensor
	var mask codec.Mask
	err := m.with(id, func(s *session) error {
		if perspective < 0 || perspective >= s.state.NumPlayers() {
			return fmt.Errorf("%w: perspective %d", game.ErrInvalidConfig, perspective)
		}
		obs = codec.Observe(s.state, codec.HistoryBoards(s.state, codec.HistoryDepth), perspective)
		mask = codec.ActionMaskFor(s.state)
		return nil
	})
	return obs, mask, err
}

func (s *session) apply(move game.Move) error {
	if err := s.state.PlayMove(move); err != nil {
		return err
	}
	segment := searcher.Segment{Move: move, StateHash: s.state.Hash()}
	for i := range s.updates {
		if s.players[i] != nil {
			s.updates[i] = append(s.updates[i], segment)
		}
	}
	return nil
}
