package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrIllegalMove   = errors.New("illegal move")
	ErrGameOver      = errors.New("game is over")
)

// Reason classifies why a move was rejected.
type Reason int

const (
	ReasonOutOfBounds Reason = iota + 1
	ReasonOccupied
	ReasonStartingCorner
	ReasonEdgeContact
	ReasonNoCornerContact
	ReasonNotYourTurn
	ReasonPieceUnavailable
	ReasonUnknownPiece
	ReasonGameOver
)

var reasonText = map[Reason]string{
	ReasonOutOfBounds:      "piece extends beyond the board",
	ReasonOccupied:         "cell is already occupied",
	ReasonStartingCorner:   "first piece must cover the starting corner",
	ReasonEdgeContact:      "piece shares an edge with the player's own piece",
	ReasonNoCornerContact:  "piece does not touch a corner of the player's own piece",
	ReasonNotYourTurn:      "not the player's turn",
	ReasonPieceUnavailable: "piece has already been played",
	ReasonUnknownPiece:     "unknown piece or orientation",
	ReasonGameOver:         "game is over",
}

func (r Reason) String() string {
	if s, ok := reasonText[r]; ok {
		return s
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// IllegalMoveError is returned for any rejected move. Callers branch on
// Reason, never on the message.
type IllegalMoveError struct {
	Reason Reason
	Cell   Cell // offending board cell, when the reason concerns one
}

func (e *IllegalMoveError) Error() string {
	switch e.Reason {
	case ReasonOutOfBounds, ReasonOccupied:
		return fmt.Sprintf("illegal move: %s at (%d, %d)", e.Reason, e.Cell.Row, e.Cell.Col)
	}
	return "illegal move: " + e.Reason.String()
}

func (e *IllegalMoveError) Unwrap() error {
	if e.Reason == ReasonGameOver {
		return ErrGameOver
	}
	return ErrIllegalMove
}

func reject(reason Reason) *IllegalMoveError {
	return &IllegalMoveError{Reason: reason}
}

// RejectionReason extracts the reason from an error returned by Validate or
// PlayMove.
func RejectionReason(err error) (Reason, bool) {
	var illegal *IllegalMoveError
	if errors.As(err, &illegal) {
		return illegal.Reason, true
	}
	return 0, false
}
