package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"dadosabertos/relatorio/internal/core/report"
)

// File writes delivered spreadsheets into a directory. Each artifact is staged in a
// temporary file next to its destination and renamed into place once fully written.
type File struct {
	dir string
	log *slog.Logger

	mu    sync.Mutex
	saved []string
}

// NewFile creates a sink writing into dir, creating it when missing.
func NewFile(dir string, log *slog.Logger) (*File, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &File{dir: dir, log: log}, nil
}

// Deliver saves artifact under its filename, replacing an existing file of the same name.
func (f *File) Deliver(ctx context.Context, artifact *report.Artifact) (err error) {
	if artifact == nil {
		return errors.New("nil artifact")
	}
	name := filepath.Base(artifact.Filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid filename %q", artifact.Filename)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+name+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(artifact.Data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	dest := filepath.Join(f.dir, name)
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}

	f.mu.Lock()
	f.saved = append(f.saved, dest)
	f.mu.Unlock()

	if f.log != nil {
		f.log.Debug("Report saved", "path", dest, "bytes", artifact.Size())
	}
	return nil
}

// Saved returns the paths written so far.
func (f *File) Saved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saved...)
}

// LastSaved returns the most recent path, or "" when nothing was saved.
func (f *File) LastSaved() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return ""
	}
	return f.saved[len(f.saved)-1]
}
