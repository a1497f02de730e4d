package strategy

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/arnabmitra/index-symbols/internal/exchange"
)

// Lines reads one ticker per line. Blank lines and lines starting with '#' are skipped.
type Lines struct{}

func (Lines) Parse(payload []byte, _ exchange.ParseOptions) ([]string, error) {
	var tickers []string
	sc := bufio.NewScanner(bytes.NewReader(payload))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tickers = append(tickers, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return tickers, nil
}
