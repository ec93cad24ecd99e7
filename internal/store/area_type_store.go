package store

import (
	"context"
	"fmt"

	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

type AreaTypeStore struct {
	db *db.Store
}

func NewAreaTypeStore(s *db.Store) *AreaTypeStore {
	return &AreaTypeStore{db: s}
}

// Create stores a new area type and returns it with its assigned id. A name
// already in use fails with a *domain.ConstraintError.
func (s *AreaTypeStore) Create(ctx context.Context, name string) (*domain.AreaType, error) {
	at := &domain.AreaType{Name: name}
	if err := domain.Validate(domain.EntityAreaType, at); err != nil {
		return nil, err
	}

	key, err := s.db.Add(ctx, db.AreaTypes, at)
	if err != nil {
		return nil, fmt.Errorf("failed to create area type: %w", err)
	}
	at.ID = key.Int64()
	return at, nil
}

func (s *AreaTypeStore) GetByID(ctx context.Context, id int64) (*domain.AreaType, error) {
	at, err := getByID[domain.AreaType](ctx, s.db, db.AreaTypes, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get area type: %w", err)
	}
	return at, nil
}

func (s *AreaTypeStore) List(ctx context.Context) ([]*domain.AreaType, error) {
	ats, err := list[domain.AreaType](ctx, s.db, db.AreaTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to list area types: %w", err)
	}
	return ats, nil
}

func (s *AreaTypeStore) Update(ctx context.Context, at *domain.AreaType) error {
	if err := requireID(domain.EntityAreaType, at.ID); err != nil {
		return err
	}
	if err := domain.Validate(domain.EntityAreaType, at); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, []string{db.AreaTypes}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.AreaTypes, domain.EntityAreaType, at.ID); err != nil {
			return err
		}
		_, err := tx.Put(ctx, db.AreaTypes, at)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update area type: %w", err)
	}
	return nil
}

// Delete removes the area type only. Areas that reference it keep the
// dangling id.
func (s *AreaTypeStore) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.db, db.AreaTypes, domain.EntityAreaType, id); err != nil {
		return fmt.Errorf("failed to delete area type: %w", err)
	}
	return nil
}

// ListAreas returns the areas of the given type in id order.
func (s *AreaTypeStore) ListAreas(ctx context.Context, areaTypeID int64) ([]*domain.Area, error) {
	areas, err := listByIndex[domain.Area](ctx, s.db, db.Areas, "areaTypeId", areaTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas for area type: %w", err)
	}
	return areas, nil
}
