// Package backup encodes store snapshots as portable documents and keeps
// them in an archive.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/homeclean/internal/db"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

var (
	ErrUnknownFormat = errors.New("unknown backup format")
	ErrNotFound      = errors.New("backup not found")
	ErrExists        = errors.New("backup already exists")
	ErrInvalidName   = errors.New("invalid backup name")
	ErrMalformed     = errors.New("malformed backup document")
)

// Archive stores encoded snapshots under names of the caller's choosing. Save
// never replaces an existing snapshot; it fails with ErrExists instead.
type Archive interface {
	Save(ctx context.Context, name string, r io.Reader) (key string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}

// Entry describes one archived snapshot.
type Entry struct {
	Key     string    `json:"key"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

func (f Format) Ext() string {
	if f == YAML {
		return ".yaml"
	}
	return ".json"
}

// Encode writes snap as one document mapping collection names to record
// arrays.
func Encode(w io.Writer, snap db.Snapshot, f Format) error {
	switch f {
	case JSON:
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode backup: %w", err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		return nil
	case YAML:
		doc := make(map[string][]any, len(snap))
		for name, records := range snap {
			values := make([]any, 0, len(records))
			for _, raw := range records {
				var v any
				if err := json.Unmarshal(raw, &v); err != nil {
					return fmt.Errorf("failed to encode %s record: %w", name, err)
				}
				values = append(values, v)
			}
			doc[name] = values
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode backup: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Decode reads a document written by Encode.
func Decode(r io.Reader, f Format) (db.Snapshot, error) {
	switch f {
	case JSON:
		var snap db.Snapshot
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if snap == nil {
			return nil, fmt.Errorf("%w: document must be an object", ErrMalformed)
		}
		return snap, nil
	case YAML:
		var doc map[string][]any
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		snap := make(db.Snapshot, len(doc))
		for name, values := range doc {
			records := make([]json.RawMessage, 0, len(values))
			for _, v := range values {
				b, err := json.Marshal(v)
				if err != nil {
					return nil, fmt.Errorf("failed to decode %s record: %w", name, err)
				}
				records = append(records, b)
			}
			snap[name] = records
		}
		return snap, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Name returns the archive name for a snapshot taken at t. A non-zero seq
// tells apart snapshots taken within the same millisecond.
func Name(t time.Time, seq int, f Format) string {
	name := "homeclean-backup-" + t.UTC().Format("20060102T150405.000Z")
	if seq > 0 {
		name += "-" + strconv.Itoa(seq)
	}
	return name + f.Ext()
}

// EncodeBytes is Encode into a buffer.
func EncodeBytes(snap db.Snapshot, f Format) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, snap, f); err != nil {
		return nil, err
	}
	return &buf, nil
}
