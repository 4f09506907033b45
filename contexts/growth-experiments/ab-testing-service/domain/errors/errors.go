package errors

import "errors"

var (
	ErrInvalidExperimentInput = errors.New("ab testing service: invalid input")
	ErrNoVariants             = errors.New("ab testing service: experiment has no variants")
	ErrAssignmentNotFound     = errors.New("ab testing service: assignment not found")
	ErrConflict               = errors.New("ab testing service: conflicting write")
)
