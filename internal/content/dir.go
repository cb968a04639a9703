package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// DirSource reads resources from a directory. Locators cannot escape it.
type DirSource struct {
	root string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", dir)
	}
	return &DirSource{root: dir}, nil
}

func (s *DirSource) Fetch(ctx context.Context, locator string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	root, err := os.OpenRoot(s.root)
	if err != nil {
		return "", fmt.Errorf("opening content root: %w", err)
	}
	defer root.Close()

	f, err := root.Open(strings.TrimPrefix(locator, "/"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", locator, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", locator, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxResourceSize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", locator, err)
	}
	return string(data), nil
}
