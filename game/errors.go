package game

import "errors"

// Rejection reasons. All are recoverable, local to one action and leave the
// state untouched; their text is what the offending player gets back.
var (
	ErrTurnViolation     = errors.New("not your turn yet")
	ErrInvalidForStage   = errors.New("action not valid in the current stage")
	ErrInsufficientFunds = errors.New("not enough money")
	ErrNoSuchCard        = errors.New("no such card")
	ErrColorMismatch     = errors.New("wrong card color")
	ErrNestedDouble      = errors.New("cannot chain a double card onto another double card")
	ErrBidTooLow         = errors.New("the current price is higher than your offer")
	ErrCalledTooEarly    = errors.New("wait for the call delay before calling")
	ErrIncompleteFist    = errors.New("not every player has bid yet")
	ErrGameOver          = errors.New("the game is over")
)
