package sim

import "errors"

var (
	ErrInvalidBody = errors.New("invalid body")
	ErrUnknownBody = errors.New("unknown body")
)
