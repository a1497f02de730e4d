package exchange

import "errors"

var (
	ErrDuplicateIdentifier = errors.New("duplicate exchange identifier")
	ErrUnknownExchange     = errors.New("unknown exchange")
	ErrInvalidSpec         = errors.New("invalid exchange spec")
)
