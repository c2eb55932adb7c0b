// Package export writes the retained postings as a JSON backup.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/amishk599/hiringintel/internal/model"
)

// FileName is the backup name for the given day, in UTC.
func FileName(now time.Time) string {
	return "hiring-intel-backup-" + now.UTC().Format("2006-01-02") + ".json"
}

// Write encodes ps as indented JSON. An empty list is refused with
// model.ErrNothingToExport.
func Write(w io.Writer, ps []model.Posting) error {
	if len(ps) == 0 {
		return model.ErrNothingToExport
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ps); err != nil {
		return fmt.Errorf("encoding postings: %w", err)
	}
	return nil
}

// WriteFile writes the backup into dir and returns its path.
func WriteFile(dir string, ps []model.Posting, now time.Time) (string, error) {
	if len(ps) == 0 {
		return "", model.ErrNothingToExport
	}
	path := filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, ps); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
