package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

// ItemPartStore manages the recurring maintenance tasks of items.
type ItemPartStore struct {
	db  *db.Store
	now func() time.Time
}

// NewItemPartStore returns a store that stamps MarkDone with now, or
// time.Now when now is nil.
func NewItemPartStore(s *db.Store, now func() time.Time) *ItemPartStore {
	if now == nil {
		now = time.Now
	}
	return &ItemPartStore{db: s, now: now}
}

// Create stores a new part on an existing item. lastDoneAt may be nil for a
// task that has never been done.
func (s *ItemPartStore) Create(ctx context.Context, name string, itemID int64, freqDays int, lastDoneAt *time.Time) (*domain.ItemPart, error) {
	part := &domain.ItemPart{Name: name, ItemID: itemID, FreqDays: freqDays, LastDoneAt: utc(lastDoneAt)}
	if err := domain.Validate(domain.EntityItemPart, part); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, []string{db.ItemParts, db.Items}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.Items, domain.EntityItem, itemID); err != nil {
			return err
		}
		key, err := tx.Add(ctx, db.ItemParts, part)
		if err != nil {
			return err
		}
		part.ID = key.Int64()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item part: %w", err)
	}
	return part, nil
}

func (s *ItemPartStore) GetByID(ctx context.Context, id int64) (*domain.ItemPart, error) {
	part, err := getByID[domain.ItemPart](ctx, s.db, db.ItemParts, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item part: %w", err)
	}
	return part, nil
}

func (s *ItemPartStore) List(ctx context.Context) ([]*domain.ItemPart, error) {
	parts, err := list[domain.ItemPart](ctx, s.db, db.ItemParts)
	if err != nil {
		return nil, fmt.Errorf("failed to list item parts: %w", err)
	}
	return parts, nil
}

func (s *ItemPartStore) ListByItemID(ctx context.Context, itemID int64) ([]*domain.ItemPart, error) {
	parts, err := listByIndex[domain.ItemPart](ctx, s.db, db.ItemParts, "itemId", itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item parts by item: %w", err)
	}
	return parts, nil
}

func (s *ItemPartStore) Update(ctx context.Context, part *domain.ItemPart) error {
	if err := requireID(domain.EntityItemPart, part.ID); err != nil {
		return err
	}
	if err := domain.Validate(domain.EntityItemPart, part); err != nil {
		return err
	}
	part.LastDoneAt = utc(part.LastDoneAt)

	err := s.db.Transaction(ctx, []string{db.ItemParts, db.Items}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.ItemParts, domain.EntityItemPart, part.ID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, db.Items, domain.EntityItem, part.ItemID); err != nil {
			return err
		}
		_, err := tx.Put(ctx, db.ItemParts, part)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update item part: %w", err)
	}
	return nil
}

func (s *ItemPartStore) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.db, db.ItemParts, domain.EntityItemPart, id); err != nil {
		return fmt.Errorf("failed to delete item part: %w", err)
	}
	return nil
}

// MarkDone sets the part's lastDoneAt to the current time and returns the
// updated part. The read and the write share one transaction.
func (s *ItemPartStore) MarkDone(ctx context.Context, id int64) (part *domain.ItemPart, err error) {
	err = s.db.Transaction(ctx, []string{db.ItemParts}, db.ReadWrite, func(tx *db.Tx) error {
		part, err = get[domain.ItemPart](ctx, tx, db.ItemParts, id)
		if err != nil {
			return err
		}
		if part == nil {
			return &domain.NotFoundError{Entity: domain.EntityItemPart, ID: id}
		}
		now := s.now().UTC()
		part.LastDoneAt = &now
		_, err = tx.Put(ctx, db.ItemParts, part)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark item part done: %w", err)
	}
	return part, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
