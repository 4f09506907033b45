package errors

import "errors"

var (
	ErrInvalidSessionInput = errors.New("invalid flow session input")
	ErrSessionNotFound     = errors.New("flow session not found")
	ErrSessionComplete     = errors.New("flow session is already complete")
	ErrFunnelNotFound      = errors.New("funnel not found")
	ErrStageNotFound       = errors.New("stage not found")
	ErrConflict            = errors.New("flow session conflict")
)
