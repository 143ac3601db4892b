package models

import "errors"

// Custom errors
var (
	ErrInvalidBatch = errors.New("invalid event batch")
	ErrInvalidPrice = errors.New("invalid price")
	ErrZeroPrice    = errors.New("american odds cannot be zero")
)
