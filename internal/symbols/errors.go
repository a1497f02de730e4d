package symbols

import (
	"errors"
	"fmt"
)

var ErrEmptySelection = errors.New("no exchanges selected")

// FetchError records a source whose payload could not be retrieved.
type FetchError struct {
	Exchange string
	Source   string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Exchange, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError records a payload that did not have the structure its strategy expects.
type ParseError struct {
	Exchange string
	Strategy string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s with %s: %v", e.Exchange, e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
