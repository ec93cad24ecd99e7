// Package local keeps backups as files in a directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vbonduro/homeclean/internal/backup"
)

type Dir struct {
	basePath string
}

var _ backup.Archive = (*Dir)(nil)

func NewDir(basePath string) (*Dir, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &Dir{basePath: basePath}, nil
}

// Save writes r to a file called name and returns name as the key. The file
// is written under a temporary name and linked into place, so a failed write
// never leaves a partial backup behind and an existing backup is never
// replaced.
func (d *Dir) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	filePath, err := d.safeJoin(name)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(d.basePath, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(tmp); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(tmp); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	defer func() {
		if rerr := os.Remove(tmp); rerr != nil {
			slog.Error("failed to remove temporary file", "error", rerr)
		}
	}()
	if err := os.Link(tmp, filePath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", backup.ErrExists, name)
		}
		return "", fmt.Errorf("failed to store backup: %w", err)
	}
	return name, nil
}

func (d *Dir) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := d.safeJoin(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", backup.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (d *Dir) Delete(ctx context.Context, key string) error {
	filePath, err := d.safeJoin(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", backup.ErrNotFound, key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns the backups in the directory, newest name first.
func (d *Dir) List(ctx context.Context) ([]backup.Entry, error) {
	dirEntries, err := os.ReadDir(d.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	entries := []backup.Entry{}
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", de.Name(), err)
		}
		entries = append(entries, backup.Entry{Key: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key > entries[j].Key })
	return entries, nil
}

// safeJoin resolves key relative to basePath and rejects anything that is not
// a plain file name inside it.
func (d *Dir) safeJoin(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", backup.ErrInvalidName, key)
	}

	absBase, err := filepath.Abs(d.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(d.basePath, key))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path traversal attempt", backup.ErrInvalidName)
	}
	return absPath, nil
}
