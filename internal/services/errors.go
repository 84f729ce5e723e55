package services

import "errors"

// ErrInvalidInput marks requests rejected before any work is done.
var ErrInvalidInput = errors.New("invalid input")
