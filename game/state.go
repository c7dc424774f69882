package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"slices"
	"sort"
)

type Status int

const (
	InProgress Status = iota
	Finished
)

func (s Status) String() string {
	if s == Finished {
		return "finished"
	}
	return "in_progress"
}

// GameState is the full state of a game. Player ids are indices into
// Players, which is also the turn order.
type GameState struct {
	Board   *Board
	Players []*Player
	Current int
	History []Move
	Status  Status
}

// NewGame creates a game on an empty board with every player holding all 21
// pieces. The Duo board only seats two players.
func NewGame(boardSize int, configs []PlayerConfig, startingIndex int) (*GameState, error) {
	if len(configs) < MinPlayers || len(configs) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d players, want %d to %d", ErrInvalidConfig, len(configs), MinPlayers, MaxPlayers)
	}
	if startingIndex < 0 || startingIndex >= len(configs) {
		return nil, fmt.Errorf("%w: starting index %d out of range", ErrInvalidConfig, startingIndex)
	}
	if boardSize < MinBoardSize {
		return nil, fmt.Errorf("%w: board size %d below minimum %d", ErrInvalidConfig, boardSize, MinBoardSize)
	}
	if boardSize == DuoBoardSize && len(configs) != 2 {
		return nil, fmt.Errorf("%w: %dx%d board seats exactly 2 players", ErrInvalidConfig, boardSize, boardSize)
	}

	players := make([]*Player, len(configs))
	for i, config := range configs {
		name := config.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		players[i] = &Player{
			ID:        i,
			Name:      name,
			Agent:     config.Agent,
			Remaining: FullPieceSet,
		}
	}

	return &GameState{
		Board:   NewBoard(boardSize),
		Players: players,
		Current: startingIndex,
		Status:  InProgress,
	}, nil
}

// NewDefaultGame creates a game with anonymous seats starting at player 0.
func NewDefaultGame(boardSize, numPlayers int) (*GameState, error) {
	return NewGame(boardSize, make([]PlayerConfig, numPlayers), 0)
}

func (gs *GameState) NumPlayers() int { return len(gs.Players) }

func (gs *GameState) IsOver() bool { return gs.Status == Finished }

// TurnNumber is the number of pieces placed so far.
func (gs *GameState) TurnNumber() int { return len(gs.History) }

// IsFirstMove reports whether player has not placed a piece yet.
func (gs *GameState) IsFirstMove(player int) bool {
	for _, m := range gs.History {
		if m.Player == player {
			return false
		}
	}
	return true
}

// MovesFor enumerates every legal move of player, ordered by piece index,
// orientation and position.
func (gs *GameState) MovesFor(player int) []Move {
	if gs.Status == Finished || player < 0 || player >= len(gs.Players) {
		return nil
	}
	first := gs.IsFirstMove(player)
	var moves []Move
	for _, t := range gs.Players[player].Remaining.Types() {
		for _, piece := range Pieces(t) {
			for _, pos := range LegalPlacements(gs.Board, piece, player, first) {
				moves = append(moves, Move{
					Player:      player,
					Piece:       t,
					Orientation: piece.Orientation,
					Row:         pos.Row,
					Col:         pos.Col,
				})
			}
		}
	}
	return moves
}

// HasLegalMove reports whether player can still place a piece.
func (gs *GameState) HasLegalMove(player int) bool {
	p := gs.Players[player]
	return HasAnyLegalMove(gs.Board, p.Remaining, player, gs.IsFirstMove(player))
}

// CanPlay checks a move without applying it.
func (gs *GameState) CanPlay(m Move) error {
	if gs.Status == Finished {
		return reject(ReasonGameOver)
	}
	if m.Player != gs.Current {
		return reject(ReasonNotYourTurn)
	}
	piece, ok := GetPiece(m.Piece, m.Orientation)
	if !ok {
		return reject(ReasonUnknownPiece)
	}
	if !gs.Players[m.Player].Remaining.Has(m.Piece) {
		return reject(ReasonPieceUnavailable)
	}
	return Validate(gs.Board, piece, m.Row, m.Col, m.Player, gs.IsFirstMove(m.Player))
}

// PlayMove applies a move for the current player and advances the turn. On
// rejection the state is unchanged.
func (gs *GameState) PlayMove(m Move) error {
	if err := gs.CanPlay(m); err != nil {
		return err
	}
	piece, _ := GetPiece(m.Piece, m.Orientation)
	if !gs.Board.PlacePiece(piece, m.Row, m.Col, m.Player) {
		return reject(ReasonOccupied)
	}

	p := gs.Players[m.Player]
	p.Remaining = p.Remaining.Without(m.Piece)
	p.LastPieceWasMonomino = m.Piece == I1
	gs.History = append(gs.History, m)
	gs.advance()
	return nil
}

// PassTurn records a voluntary pass by player, who must be the current
// player. A player who passed takes no further turns.
func (gs *GameState) PassTurn(player int) error {
	if gs.Status == Finished {
		return reject(ReasonGameOver)
	}
	if player != gs.Current {
		return reject(ReasonNotYourTurn)
	}
	gs.Players[player].HasPassed = true
	gs.advance()
	return nil
}

// ForcePass passes for the current player regardless of which moves remain.
func (gs *GameState) ForcePass() error {
	return gs.PassTurn(gs.Current)
}

// advance hands the turn to the next player who has not passed. A candidate
// without any legal move is marked as passed on the way. The game finishes
// once every player has passed.
func (gs *GameState) advance() {
	n := len(gs.Players)
	for step := 1; step <= n; step++ {
		idx := (gs.Current + step) % n
		p := gs.Players[idx]
		if p.HasPassed {
			continue
		}
		if !gs.HasLegalMove(idx) {
			p.HasPassed = true
			continue
		}
		gs.Current = idx
		return
	}
	gs.Status = Finished
}

func (gs *GameState) Scores() []int {
	scores := make([]int, len(gs.Players))
	for i, p := range gs.Players {
		scores[i] = p.Score()
	}
	return scores
}

// Winner returns the player with the strictly highest score. A tie for the
// top score has no winner.
func (gs *GameState) Winner() (int, bool) {
	scores := gs.Scores()
	best := slices.Max(scores)
	winner := -1
	for i, s := range scores {
		if s == best {
			if winner >= 0 {
				return -1, false
			}
			winner = i
		}
	}
	return winner, true
}

type Standing struct {
	Player int
	Score  int
	Rank   int // 1-based, tied players share a rank
}

// Rankings orders players by score, best first.
func (gs *GameState) Rankings() []Standing {
	scores := gs.Scores()
	standings := make([]Standing, len(scores))
	for i, s := range scores {
		standings[i] = Standing{Player: i, Score: s}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	for i := range standings {
		if i > 0 && standings[i].Score == standings[i-1].Score {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
	return standings
}

// Copy returns a deep, independent copy.
func (gs *GameState) Copy() *GameState {
	players := make([]*Player, len(gs.Players))
	for i, p := range gs.Players {
		cp := *p
		players[i] = &cp
	}
	return &GameState{
		Board:   gs.Board.Copy(),
		Players: players,
		Current: gs.Current,
		History: slices.Clone(gs.History),
		Status:  gs.Status,
	}
}

// Hash identifies a position: occupancy, turn and every player's pieces and
// pass flags.
func (gs *GameState) Hash() StateHash {
	hasher := fnv.New64a()

	hasher.Write([]byte{byte(gs.Board.size)})
	for _, v := range gs.Board.grid {
		hasher.Write([]byte{byte(v)})
	}
	binary.Write(hasher, binary.LittleEndian, int64(gs.Current))
	binary.Write(hasher, binary.LittleEndian, int64(gs.Status))
	for _, p := range gs.Players {
		binary.Write(hasher, binary.LittleEndian, uint32(p.Remaining))
		binary.Write(hasher, binary.LittleEndian, p.HasPassed)
		binary.Write(hasher, binary.LittleEndian, p.LastPieceWasMonomino)
	}

	return StateHash(hasher.Sum64())
}

// Player, LegalMoves and Play implement State.

func (gs *GameState) Player() int { return gs.Current }

func (gs *GameState) LegalMoves() []Move { return gs.MovesFor(gs.Current) }

// Play returns a new state with the move applied. It panics on an illegal
// move: search only plays moves taken from LegalMoves.
func (gs *GameState) Play(m Move) State {
	next := gs.Copy()
	if err := next.PlayMove(m); err != nil {
		panic(fmt.Sprintf("play %v: %v", m, err))
	}
	return next
}
