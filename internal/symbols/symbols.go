package symbols

import (
	"regexp"
	"strings"
	"time"
)

// Record is one normalized ticker and the exchange it was first seen on.
type Record struct {
	Ticker   string `json:"ticker"`
	Exchange string `json:"exchange"`
}

// SourceReport summarizes what one selected exchange contributed to a run.
type SourceReport struct {
	Exchange   string        `json:"exchange"`
	Raw        int           `json:"raw"`
	Records    int           `json:"records"`
	Duplicates int           `json:"duplicates"`
	Rejected   int           `json:"rejected"`
	Bytes      int           `json:"bytes"`
	Elapsed    time.Duration `json:"elapsed"`
	Err        error         `json:"-"`

	// Tickers is the source's own constituent list, before tickers won by an earlier
	// source in the selection were dropped.
	Tickers []string `json:"-"`
}

func (s SourceReport) OK() bool {
	return s.Err == nil
}

// Result is the outcome of one acquisition run. Errors is keyed by exchange identifier and
// holds a *FetchError or *ParseError for every source that contributed nothing.
type Result struct {
	Records    []Record         `json:"records"`
	Errors     map[string]error `json:"-"`
	Sources    []SourceReport   `json:"sources"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

func (r *Result) Tickers() []string {
	out := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		out = append(out, rec.Ticker)
	}
	return out
}

// ByExchange groups tickers by the exchange that won them.
func (r *Result) ByExchange() map[string][]string {
	out := make(map[string][]string)
	for _, rec := range r.Records {
		out[rec.Exchange] = append(out[rec.Exchange], rec.Ticker)
	}
	return out
}

// Constituents lists every ticker exchange reported in this run, including the ones an
// earlier exchange in the selection won in Records. A result without a report for exchange
// falls back to the records it won.
func (r *Result) Constituents(exchange string) []Record {
	for _, src := range r.Sources {
		if src.Exchange != exchange {
			continue
		}
		out := make([]Record, 0, len(src.Tickers))
		for _, t := range src.Tickers {
			out = append(out, Record{Ticker: t, Exchange: exchange})
		}
		return out
	}

	var out []Record
	for _, rec := range r.Records {
		if rec.Exchange == exchange {
			out = append(out, rec)
		}
	}
	return out
}

// ErrorMessages flattens Errors into plain descriptions.
func (r *Result) ErrorMessages() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for id, err := range r.Errors {
		out[id] = err.Error()
	}
	return out
}

var footnote = regexp.MustCompile(`(?i)(%5B\d+%5D|\[\d+\])`)

// Normalize trims, drops footnote markers and upper-cases a raw ticker.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return strings.ToUpper(clean(raw))
}

// clean strips footnote markers until none are left, then trims.
func clean(raw string) string {
	s := raw
	for {
		next := footnote.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}
