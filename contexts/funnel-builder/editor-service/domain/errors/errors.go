package errors

import "errors"

var (
	ErrInvalidEditorInput = errors.New("editor service: invalid input")
	ErrEditorNotFound     = errors.New("editor service: editor session not found")
	ErrDraftNotFound      = errors.New("editor service: draft not found")
	ErrStageNotFound      = errors.New("editor service: stage not found")
	ErrConflict           = errors.New("editor service: conflicting write")
)
