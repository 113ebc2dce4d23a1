package repository

import "errors"

var (
	ErrInvalidFloorData = errors.New("invalid floor data")
	ErrInvalidRecord    = errors.New("reservation record has no id")
)
