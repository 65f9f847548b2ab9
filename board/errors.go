package board

import "errors"

var (
	// ErrIllegalPlacement is returned when a placement targets an occupied
	// or off-grid cell, or the game has already reached its turn limit.
	ErrIllegalPlacement = errors.New("illegal placement")
	// ErrInvariantViolation means the board's bookkeeping has diverged from
	// its squares. It is never expected in correct operation.
	ErrInvariantViolation = errors.New("board invariant violated")
	ErrCoordOutOfRange    = errors.New("coordinate out of range")
	ErrInvalidTetromino   = errors.New("invalid tetromino")
)
