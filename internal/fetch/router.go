package fetch

import (
	"context"
	"fmt"
	"strings"
)

// Fetcher matches symbols.Fetcher; repeated here so this package stays a leaf.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Router sends http(s) locations to Web and everything else to Local.
type Router struct {
	Web   Fetcher
	Local Fetcher
}

func (r Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		if r.Web == nil {
			return nil, fmt.Errorf("no web fetcher for %s", location)
		}
		return r.Web.Fetch(ctx, location)
	default:
		if r.Local == nil {
			return nil, fmt.Errorf("no local fetcher for %s", location)
		}
		return r.Local.Fetch(ctx, location)
	}
}
