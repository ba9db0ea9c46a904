package parcel

import "errors"

var (
	ErrNotFound = errors.New("parcel not found")
	ErrInvalid  = errors.New("invalid parcel")
)
