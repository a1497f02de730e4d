package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/arnabmitra/index-symbols/internal/symbols"
	"github.com/dustin/go-humanize"
)

// WriteSummary prints which sources succeeded, with counts, and which failed, with reasons.
func WriteSummary(w io.Writer, res *symbols.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXCHANGE\tSTATUS\tSYMBOLS\tDUPLICATES\tPAYLOAD\tTIME")
	for _, src := range res.Sources {
		status := "ok"
		if !src.OK() {
			status = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			src.Exchange,
			status,
			humanize.Comma(int64(src.Records)),
			humanize.Comma(int64(src.Duplicates)),
			humanize.Bytes(uint64(src.Bytes)),
			src.Elapsed.Round(time.Millisecond),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ok := len(res.Sources) - len(res.Errors)
	fmt.Fprintf(w, "\n%s symbols from %d of %s in %s\n",
		humanize.Comma(int64(len(res.Records))),
		ok,
		pluralSources(len(res.Sources)),
		res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond),
	)

	if len(res.Errors) > 0 {
		fmt.Fprintln(w, "\nFailed sources:")
		for _, id := range sortedErrors(res) {
			fmt.Fprintf(w, "  %s: %v\n", id, res.Errors[id])
		}
	}
	return nil
}

func pluralSources(n int) string {
	if n == 1 {
		return "1 source"
	}
	return fmt.Sprintf("%d sources", n)
}
