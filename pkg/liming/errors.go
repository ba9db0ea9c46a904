package liming

import "errors"

var (
	ErrNoActiveProducts             = errors.New("no active products")
	ErrUnorderedApplicationConflict = errors.New("unordered application conflict")
	ErrApplicationNotFound          = errors.New("application not found")
	ErrInvalidPlanInput             = errors.New("invalid plan input")
)
