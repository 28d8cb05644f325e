package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrNoAvailableMoves  = errors.New("no available moves")
	ErrGameNotFound      = errors.New("game not found")
	ErrInvalidSnapshot   = errors.New("invalid game snapshot")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)
