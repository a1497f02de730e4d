// Package strategy holds the parsers that turn a fetched payload into raw ticker strings.
// Each exchange names its parser by identifier; sources with the same layout share one.
package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/arnabmitra/index-symbols/internal/exchange"
)

var (
	ErrUnknownStrategy = errors.New("unknown parse strategy")
	ErrTableNotFound   = errors.New("table not found")
	ErrColumnNotFound  = errors.New("column not found")
	ErrEmptyPayload    = errors.New("empty payload")
)

// Parser extracts raw tickers from one payload. Raw tickers are not normalized.
type Parser interface {
	Parse(payload []byte, opts exchange.ParseOptions) ([]string, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(payload []byte, opts exchange.ParseOptions) ([]string, error)

func (f ParserFunc) Parse(payload []byte, opts exchange.ParseOptions) ([]string, error) {
	return f(payload, opts)
}

type Set struct {
	parsers map[string]Parser
}

func NewSet() *Set {
	return &Set{parsers: make(map[string]Parser)}
}

// Defaults returns a set with every built-in strategy registered.
func Defaults() *Set {
	s := NewSet()
	s.Add(exchange.StrategyWikiTable, WikiTable{})
	s.Add(exchange.StrategyCSV, CSV{})
	s.Add(exchange.StrategyLines, Lines{})
	return s
}

// Add registers p under name, replacing any parser already there.
func (s *Set) Add(name string, p Parser) {
	s.parsers[name] = p
}

func (s *Set) Get(name string) (Parser, error) {
	p, ok := s.parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return p, nil
}

func (s *Set) Names() []string {
	names := make([]string, 0, len(s.parsers))
	for n := range s.parsers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
