package store

import (
	"context"
	"fmt"

	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

type AreaStore struct {
	db *db.Store
}

func NewAreaStore(s *db.Store) *AreaStore {
	return &AreaStore{db: s}
}

// Create stores a new area under an existing area type.
func (s *AreaStore) Create(ctx context.Context, name string, areaTypeID int64) (*domain.Area, error) {
	area := &domain.Area{Name: name, AreaTypeID: areaTypeID}
	if err := domain.Validate(domain.EntityArea, area); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, []string{db.Areas, db.AreaTypes}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.AreaTypes, domain.EntityAreaType, areaTypeID); err != nil {
			return err
		}
		key, err := tx.Add(ctx, db.Areas, area)
		if err != nil {
			return err
		}
		area.ID = key.Int64()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create area: %w", err)
	}
	return area, nil
}

func (s *AreaStore) GetByID(ctx context.Context, id int64) (*domain.Area, error) {
	area, err := getByID[domain.Area](ctx, s.db, db.Areas, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get area: %w", err)
	}
	return area, nil
}

func (s *AreaStore) List(ctx context.Context) ([]*domain.Area, error) {
	areas, err := list[domain.Area](ctx, s.db, db.Areas)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	return areas, nil
}

func (s *AreaStore) ListByAreaTypeID(ctx context.Context, areaTypeID int64) ([]*domain.Area, error) {
	areas, err := listByIndex[domain.Area](ctx, s.db, db.Areas, "areaTypeId", areaTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas by area type: %w", err)
	}
	return areas, nil
}

func (s *AreaStore) Update(ctx context.Context, area *domain.Area) error {
	if err := requireID(domain.EntityArea, area.ID); err != nil {
		return err
	}
	if err := domain.Validate(domain.EntityArea, area); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, []string{db.Areas, db.AreaTypes}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.Areas, domain.EntityArea, area.ID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, db.AreaTypes, domain.EntityAreaType, area.AreaTypeID); err != nil {
			return err
		}
		_, err := tx.Put(ctx, db.Areas, area)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update area: %w", err)
	}
	return nil
}

// Delete removes the area only. Items and group memberships that reference
// it are left in place.
func (s *AreaStore) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.db, db.Areas, domain.EntityArea, id); err != nil {
		return fmt.Errorf("failed to delete area: %w", err)
	}
	return nil
}

func (s *AreaStore) ListItems(ctx context.Context, areaID int64) ([]*domain.Item, error) {
	items, err := listByIndex[domain.Item](ctx, s.db, db.Items, "areaId", areaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for area: %w", err)
	}
	return items, nil
}
