package exchange

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type file struct {
	Exchanges []Spec `yaml:"exchanges"`
}

// Load builds a registry from a YAML document of the form
//
//	exchanges:
//	  - id: SNP_500
//	    name: S&P 500
//	    source: https://en.wikipedia.org/wiki/List_of_S%26P_500_companies
//	    strategy: wiki_table
//	    table: 0
//	    column: Symbol
//	    rewrites:
//	      - pattern: '^([A-Z]{1,5})$'
//	        replace: '${1}'
//
// Entries are registered in document order; a repeated id fails the whole load.
func Load(r io.Reader) (*Registry, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode exchanges: %w", err)
	}

	reg := NewRegistry()
	for _, s := range f.Exchanges {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchanges file: %w", err)
	}
	defer f.Close()

	return Load(f)
}
