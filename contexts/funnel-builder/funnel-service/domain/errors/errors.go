package errors

import "errors"

var (
	ErrInvalidFunnelInput = errors.New("invalid funnel input")
	ErrFunnelNotFound     = errors.New("funnel not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrOptionNotFound     = errors.New("stage option not found")
	ErrInvalidStageType   = errors.New("invalid stage type")
	ErrConflict           = errors.New("funnel conflict")
)
