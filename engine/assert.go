package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove is returned for any move the rules reject. State is never
	// mutated when it is returned.
	ErrInvalidMove = errors.New("invalid move")
	// ErrEmptyPile is returned when an action needs a card from an empty pile.
	ErrEmptyPile = errors.New("pile is empty")
	// ErrRecycleBlocked is returned when the recycle policy refuses Waste→Stock.
	ErrRecycleBlocked = errors.New("recycle blocked")
	// ErrUnknownPile is returned for a PileID that names no pile.
	ErrUnknownPile = errors.New("unknown pile")
)

// rejectf builds an ErrInvalidMove describing why a move was refused.
func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMove, fmt.Sprintf(format, args...))
}

// violation reports a broken caller contract. klondikedebug builds panic;
// default builds hand the error back so the caller can reject the intent.
func violation(err error) error {
	if debugAssertions {
		panic(err)
	}
	return err
}
