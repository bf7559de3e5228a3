package apperror

import "errors"

var (
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrNotConnected     = errors.New("connection is not open")
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownKind      = errors.New("unknown message type")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNoAvailableMoves = errors.New("no available moves")
)
