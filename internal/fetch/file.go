package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File reads payloads from the local filesystem. Relative paths resolve against Dir.
type File struct {
	Dir string
}

func (f File) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(location, "file://")
	if !filepath.IsAbs(path) && f.Dir != "" {
		path = filepath.Join(f.Dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
