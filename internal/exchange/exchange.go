package exchange

import (
	"fmt"
	"regexp"
)

// Spec describes one configured exchange or index and how to read its constituent list.
type Spec struct {
	ID       string       `yaml:"id" json:"id"`
	Name     string       `yaml:"name" json:"name"`
	Source   string       `yaml:"source" json:"source"`
	Strategy string       `yaml:"strategy" json:"strategy"`
	Options  ParseOptions `yaml:",inline" json:"options"`
}

// AnyTable selects the first table that carries the configured column.
const AnyTable = -1

// ParseOptions are the per-source knobs handed to the parse strategy.
type ParseOptions struct {
	Table    int       `yaml:"table" json:"table"`
	Column   string    `yaml:"column" json:"column"`
	Rewrites []Rewrite `yaml:"rewrites" json:"rewrites,omitempty"`
}

// Rewrite turns source notation into a Yahoo style ticker, e.g. "BARC" into "BARC.L".
// Replace uses regexp expansion syntax (${1}).
type Rewrite struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Replace string `yaml:"replace" json:"replace"`
}

func (s Spec) String() string {
	if s.Name == "" {
		return s.ID
	}
	return fmt.Sprintf("%s (%s)", s.ID, s.Name)
}

// Validate checks the invariants a spec must hold before it can be registered.
func (s Spec) Validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: empty identifier", ErrInvalidSpec)
	case s.Source == "":
		return fmt.Errorf("%w: %s has no source", ErrInvalidSpec, s.ID)
	case s.Strategy == "":
		return fmt.Errorf("%w: %s has no parse strategy", ErrInvalidSpec, s.ID)
	}
	if _, err := s.CompileRewrites(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSpec, s.ID, err)
	}
	return nil
}

// CompiledRewrite is a Rewrite with its pattern compiled.
type CompiledRewrite struct {
	re      *regexp.Regexp
	replace string
}

func (r CompiledRewrite) Apply(s string) string {
	return r.re.ReplaceAllString(s, r.replace)
}

func (s Spec) CompileRewrites() ([]CompiledRewrite, error) {
	out := make([]CompiledRewrite, 0, len(s.Options.Rewrites))
	for _, rw := range s.Options.Rewrites {
		re, err := regexp.Compile(rw.Pattern)
		if err != nil {
			return nil, fmt.Errorf("bad rewrite pattern %q: %w", rw.Pattern, err)
		}
		out = append(out, CompiledRewrite{re: re, replace: rw.Replace})
	}
	return out, nil
}

func (s Spec) clone() Spec {
	c := s
	if s.Options.Rewrites != nil {
		c.Options.Rewrites = append([]Rewrite(nil), s.Options.Rewrites...)
	}
	return c
}
