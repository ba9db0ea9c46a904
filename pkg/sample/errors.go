package sample

import "errors"

var ErrNotFound = errors.New("soil sample not found")
