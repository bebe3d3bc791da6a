package apperror

import "errors"

var (
	ErrInvalidCoordinate  = errors.New("coordinate is outside the board")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrAgentUnresponsive  = errors.New("agent is unresponsive")
	ErrMalformedMove      = errors.New("agent replied with a malformed move")
	ErrMatchNotFound      = errors.New("match not found")
	ErrUnknownMode        = errors.New("unknown match mode")
	ErrUnknownColor       = errors.New("unknown color")
	ErrEndpointIsRequired = errors.New("agent endpoint is required")
	ErrSurfaceClosed      = errors.New("board surface is closed")
	ErrUnknownSurface     = errors.New("unknown board surface")
)
