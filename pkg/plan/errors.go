// Package plan holds the errors shared by the plan repository, service and
// HTTP layers.
package plan

import "errors"

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrProductNotFound = errors.New("product not found")
	// ErrVersionConflict means the plan changed since the caller read it.
	ErrVersionConflict = errors.New("plan version conflict")
	ErrInvalidInput    = errors.New("invalid input")
)
