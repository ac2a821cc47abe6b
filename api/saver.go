package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Saver receives downloaded files.
type Saver interface {
	Save(name string, r io.Reader) (int64, error)
}

// DirSaver writes downloads into a directory, creating it on first use.
type DirSaver struct {
	Dir string
}

func (d DirSaver) Save(name string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := os.Create(filepath.Join(d.Dir, filepath.Base(name)))
	if err != nil {
		return 0, fmt.Errorf("error creating export file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("error writing export file: %w", err)
	}
	return n, nil
}
