package domain

import "errors"

var (
	ErrPayloadMissing      = errors.New("payload is required")
	ErrInvalidContext      = errors.New("invalid optimizer context")
	ErrUnparseableResponse = errors.New("generator response could not be parsed")
	ErrUnparseablePayload  = errors.New("assignments payload could not be parsed")
	ErrStrictRejected      = errors.New("plan rejected in strict mode")
	ErrStoreIDMissing      = errors.New("store id is required")
	ErrStoreNotFound       = errors.New("store not found")
)
