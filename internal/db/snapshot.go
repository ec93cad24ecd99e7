package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vbonduro/homeclean/internal/domain"
)

// Snapshot maps collection names to their records, in primary-key order.
type Snapshot map[string][]json.RawMessage

// CollectionNames returns every collection name in schema order.
func CollectionNames() []string {
	names := make([]string, len(Schema))
	for i, c := range Schema {
		names[i] = c.Name
	}
	return names
}

// ExportAll reads every collection in one read-only transaction.
func (s *Store) ExportAll(ctx context.Context) (Snapshot, error) {
	names := CollectionNames()
	snapshot := make(Snapshot, len(names))
	err := s.Transaction(ctx, names, ReadOnly, func(tx *Tx) error {
		for _, name := range names {
			docs, err := tx.GetAll(ctx, name)
			if err != nil {
				return err
			}
			snapshot[name] = docs
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}
	return snapshot, nil
}

// ImportAll replaces the contents of each collection present in snapshot with
// its records, keeping their keys. Collections missing from snapshot are left
// alone. Nothing is written unless every record goes in.
func (s *Store) ImportAll(ctx context.Context, snapshot Snapshot) error {
	for name := range snapshot {
		if _, ok := lookup(name); !ok {
			return fmt.Errorf("failed to import: %w: %q", ErrUnknownCollection, name)
		}
	}

	var names []string
	for _, c := range Schema {
		if _, ok := snapshot[c.Name]; ok {
			names = append(names, c.Name)
		}
	}

	err := s.Transaction(ctx, names, ReadWrite, func(tx *Tx) error {
		for _, name := range names {
			if err := tx.Clear(ctx, name); err != nil {
				return err
			}
			for i, record := range snapshot[name] {
				if _, err := tx.Add(ctx, name, record); err != nil {
					return fmt.Errorf("record %d of %s: %w", i, name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return &domain.TransactionError{Op: "import snapshot", Err: err}
	}

	counts := make([]any, 0, 2*len(names))
	for _, name := range names {
		counts = append(counts, name, len(snapshot[name]))
	}
	s.logger.Info("snapshot imported", counts...)
	return nil
}
