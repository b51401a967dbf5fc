package models

import "errors"

var (
	ErrIncompleteBundle = errors.New("incomplete token bundle")
	ErrInvalidCamera    = errors.New("invalid camera")
)
