package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

type ItemStore struct {
	db *db.Store
}

func NewItemStore(s *db.Store) *ItemStore {
	return &ItemStore{db: s}
}

// Create stores a new item in an existing area.
func (s *ItemStore) Create(ctx context.Context, name string, areaID int64) (*domain.Item, error) {
	item := &domain.Item{Name: name, AreaID: areaID}
	if err := domain.Validate(domain.EntityItem, item); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, []string{db.Items, db.Areas}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.Areas, domain.EntityArea, areaID); err != nil {
			return err
		}
		key, err := tx.Add(ctx, db.Items, item)
		if err != nil {
			return err
		}
		item.ID = key.Int64()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := getByID[domain.Item](ctx, s.db, db.Items, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	items, err := list[domain.Item](ctx, s.db, db.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) ListByAreaID(ctx context.Context, areaID int64) ([]*domain.Item, error) {
	items, err := listByIndex[domain.Item](ctx, s.db, db.Items, "areaId", areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by area: %w", err)
	}
	return items, nil
}

func (s *ItemStore) Update(ctx context.Context, item *domain.Item) error {
	if err := requireID(domain.EntityItem, item.ID); err != nil {
		return err
	}
	if err := domain.Validate(domain.EntityItem, item); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, []string{db.Items, db.Areas}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.Items, domain.EntityItem, item.ID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, db.Areas, domain.EntityArea, item.AreaID); err != nil {
			return err
		}
		_, err := tx.Put(ctx, db.Items, item)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// Delete removes the item and all of its parts in one transaction. A failure
// at any step leaves both collections untouched and is reported as a
// *domain.TransactionError.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	var parts int
	err := s.db.Transaction(ctx, []string{db.Items, db.ItemParts}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.Items, domain.EntityItem, id); err != nil {
			return err
		}
		children, err := byIndex[domain.ItemPart](ctx, tx, db.ItemParts, "itemId", id)
		if err != nil {
			return err
		}
		for _, p := range children {
			if _, err := tx.Delete(ctx, db.ItemParts, db.ID(p.ID)); err != nil {
				return err
			}
		}
		parts = len(children)
		_, err = tx.Delete(ctx, db.Items, db.ID(id))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return &domain.TransactionError{Op: "delete item", Err: err}
	}
	slog.Debug("item deleted", "item_id", id, "parts", parts)
	return nil
}

func (s *ItemStore) ListParts(ctx context.Context, itemID int64) ([]*domain.ItemPart, error) {
	parts, err := listByIndex[domain.ItemPart](ctx, s.db, db.ItemParts, "itemId", itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts for item: %w", err)
	}
	return parts, nil
}
