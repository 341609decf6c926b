package models

import "errors"

// Custom errors
var (
	ErrInvalidTrials       = errors.New("trial count must be at least 1")
	ErrInvalidCompetitor   = errors.New("invalid competitor configuration")
	ErrInvalidCircuit      = errors.New("invalid circuit configuration")
	ErrDuplicateCompetitor = errors.New("duplicate competitor name")
	ErrNotFound            = errors.New("record not found")
)
