package apperror

import "errors"

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrForbidden      = errors.New("seat is bound to another connection")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrMatchFinished  = errors.New("match is already finished")
	ErrInvalidCell    = errors.New("invalid cell coordinates")
	ErrInvalidRequest = errors.New("invalid request payload")
)
