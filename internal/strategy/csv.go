package strategy

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arnabmitra/index-symbols/internal/exchange"
)

// CSV reads the configured column of a comma separated file with a header row.
// Table is ignored.
type CSV struct{}

func (CSV) Parse(payload []byte, opts exchange.ParseOptions) ([]string, error) {
	payload = bytes.TrimPrefix(payload, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyPayload
	}

	r := csv.NewReader(bytes.NewReader(payload))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), opts.Column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q in header %v", ErrColumnNotFound, opts.Column, header)
	}

	var tickers []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if col < len(rec) && strings.TrimSpace(rec[col]) != "" {
			tickers = append(tickers, rec[col])
		}
	}
	return tickers, nil
}
