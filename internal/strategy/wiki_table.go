package strategy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/arnabmitra/index-symbols/internal/exchange"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WikiTable reads one column out of an HTML table, the way constituent lists are laid out
// on Wikipedia. Tables are counted in document order, nested tables included.
// Cells spanning several columns are not expanded.
type WikiTable struct{}

func (WikiTable) Parse(payload []byte, opts exchange.ParseOptions) ([]string, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyPayload
	}
	if opts.Column == "" {
		return nil, fmt.Errorf("%w: no column configured", ErrColumnNotFound)
	}

	doc, err := html.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	tables := findAll(doc, atom.Table)

	if opts.Table == exchange.AnyTable {
		for _, t := range tables {
			if tickers, err := columnValues(t, opts.Column); err == nil {
				return tickers, nil
			}
		}
		return nil, fmt.Errorf("%w: no table with column %q among %d tables", ErrTableNotFound, opts.Column, len(tables))
	}

	if opts.Table < 0 || opts.Table >= len(tables) {
		return nil, fmt.Errorf("%w: table %d requested, page has %d", ErrTableNotFound, opts.Table, len(tables))
	}
	return columnValues(tables[opts.Table], opts.Column)
}

func columnValues(table *html.Node, column string) ([]string, error) {
	rows := tableRows(table)

	col, header := -1, -1
	for i, row := range rows {
		cells := rowCells(row)
		if len(cells) == 0 || !allHeaders(cells) {
			continue
		}
		for j, c := range cells {
			if strings.EqualFold(cellText(c), column) {
				col, header = j, i
				break
			}
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	tickers := make([]string, 0, len(rows))
	for _, row := range rows[header+1:] {
		cells := rowCells(row)
		if len(cells) <= col || allHeaders(cells) {
			continue
		}
		if v := cellText(cells[col]); v != "" {
			tickers = append(tickers, v)
		}
	}
	return tickers, nil
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// tableRows returns the rows of table without descending into nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				rows = append(rows, c)
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

func allHeaders(cells []*html.Node) bool {
	for _, c := range cells {
		if c.DataAtom != atom.Th {
			return false
		}
	}
	return true
}

// cellText is the visible text of a cell, footnote superscripts and styles excluded.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			return
		case n.Type == html.ElementNode:
			switch n.DataAtom {
			case atom.Sup, atom.Style, atom.Script:
				return
			case atom.Br:
				b.WriteByte(' ')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
