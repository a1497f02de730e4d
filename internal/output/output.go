package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arnabmitra/index-symbols/internal/symbols"
)

type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want txt, csv or json)", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to txt.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatText
}

// Write serializes the records of res. Only json carries the per-source errors.
func Write(w io.Writer, res *symbols.Result, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, res)
	case FormatJSON:
		return writeJSON(w, res)
	default:
		return writeText(w, res)
	}
}

// WriteFile writes res to path, creating parent directories.
func WriteFile(path string, res *symbols.Result, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(f, res, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeText(w io.Writer, res *symbols.Result) error {
	for _, rec := range res.Records {
		if _, err := fmt.Fprintln(w, rec.Ticker); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, res *symbols.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ticker", "exchange"}); err != nil {
		return err
	}
	for _, rec := range res.Records {
		if err := cw.Write([]string{rec.Ticker, rec.Exchange}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonDocument struct {
	Records []symbols.Record       `json:"records"`
	Errors  map[string]string      `json:"errors"`
	Sources []symbols.SourceReport `json:"sources"`
}

func writeJSON(w io.Writer, res *symbols.Result) error {
	doc := jsonDocument{
		Records: res.Records,
		Errors:  res.ErrorMessages(),
		Sources: res.Sources,
	}
	if doc.Records == nil {
		doc.Records = []symbols.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// sortedErrors returns the failed exchange ids in a stable order.
func sortedErrors(res *symbols.Result) []string {
	ids := make([]string, 0, len(res.Errors))
	for id := range res.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
