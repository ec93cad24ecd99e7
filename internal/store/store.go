// Package store holds one repository per entity. Repositories validate
// records, check references inside the same transaction as the write, and
// run cascades atomically on top of the generic db.Store.
package store

import (
	"context"
	"time"

	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

// Repositories bundles every entity repository over one store.
type Repositories struct {
	AreaTypes  *AreaTypeStore
	Areas      *AreaStore
	AreaGroups *AreaGroupStore
	Items      *ItemStore
	ItemParts  *ItemPartStore
}

// NewRepositories wires all repositories to s. now is the clock MarkDone
// stamps parts with; nil means time.Now.
func NewRepositories(s *db.Store, now func() time.Time) *Repositories {
	return &Repositories{
		AreaTypes:  NewAreaTypeStore(s),
		Areas:      NewAreaStore(s),
		AreaGroups: NewAreaGroupStore(s),
		Items:      NewItemStore(s),
		ItemParts:  NewItemPartStore(s, now),
	}
}

// get reads one record by id inside tx. It returns nil, nil when absent.
func get[T any](ctx context.Context, tx *db.Tx, collection string, id int64) (*T, error) {
	raw, err := tx.Get(ctx, collection, db.ID(id))
	if err != nil || raw == nil {
		return nil, err
	}
	v, err := db.Decode[T](raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// mustExist fails with a *domain.NotFoundError unless collection holds id.
func mustExist(ctx context.Context, tx *db.Tx, collection, entity string, id int64) error {
	raw, err := tx.Get(ctx, collection, db.ID(id))
	if err != nil {
		return err
	}
	if raw == nil {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func byIndex[T any](ctx context.Context, tx *db.Tx, collection, index string, value int64) ([]*T, error) {
	raws, err := tx.GetByIndex(ctx, collection, index, value)
	if err != nil {
		return nil, err
	}
	return db.DecodeAll[T](raws)
}

func all[T any](ctx context.Context, tx *db.Tx, collection string) ([]*T, error) {
	raws, err := tx.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return db.DecodeAll[T](raws)
}

func getByID[T any](ctx context.Context, s *db.Store, collection string, id int64) (v *T, err error) {
	err = s.Transaction(ctx, []string{collection}, db.ReadOnly, func(tx *db.Tx) error {
		v, err = get[T](ctx, tx, collection, id)
		return err
	})
	return v, err
}

func list[T any](ctx context.Context, s *db.Store, collection string) (vs []*T, err error) {
	err = s.Transaction(ctx, []string{collection}, db.ReadOnly, func(tx *db.Tx) error {
		vs, err = all[T](ctx, tx, collection)
		return err
	})
	return vs, err
}

func listByIndex[T any](ctx context.Context, s *db.Store, collection, index string, value int64) (vs []*T, err error) {
	err = s.Transaction(ctx, []string{collection}, db.ReadOnly, func(tx *db.Tx) error {
		vs, err = byIndex[T](ctx, tx, collection, index, value)
		return err
	})
	return vs, err
}

// deleteByID removes one record, failing with a *domain.NotFoundError when
// there is nothing to remove.
func deleteByID(ctx context.Context, s *db.Store, collection, entity string, id int64) error {
	deleted, err := s.Delete(ctx, collection, db.ID(id))
	if err != nil {
		return err
	}
	if !deleted {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func requireID(entity string, id int64) error {
	if id <= 0 {
		return &domain.ValidationError{Entity: entity, Field: "id", Reason: "must be greater than 0"}
	}
	return nil
}
