package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

// AreaGroupStore manages area groups and their many-to-many membership with
// areas.
type AreaGroupStore struct {
	db *db.Store
}

func NewAreaGroupStore(s *db.Store) *AreaGroupStore {
	return &AreaGroupStore{db: s}
}

func (s *AreaGroupStore) Create(ctx context.Context, name string) (*domain.AreaGroup, error) {
	g := &domain.AreaGroup{Name: name}
	if err := domain.Validate(domain.EntityAreaGroup, g); err != nil {
		return nil, err
	}

	key, err := s.db.Add(ctx, db.AreaGroups, g)
	if err != nil {
		return nil, fmt.Errorf("failed to create area group: %w", err)
	}
	g.ID = key.Int64()
	return g, nil
}

func (s *AreaGroupStore) GetByID(ctx context.Context, id int64) (*domain.AreaGroup, error) {
	g, err := getByID[domain.AreaGroup](ctx, s.db, db.AreaGroups, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get area group: %w", err)
	}
	return g, nil
}

func (s *AreaGroupStore) List(ctx context.Context) ([]*domain.AreaGroup, error) {
	groups, err := list[domain.AreaGroup](ctx, s.db, db.AreaGroups)
	if err != nil {
		return nil, fmt.Errorf("failed to list area groups: %w", err)
	}
	return groups, nil
}

func (s *AreaGroupStore) Update(ctx context.Context, g *domain.AreaGroup) error {
	if err := requireID(domain.EntityAreaGroup, g.ID); err != nil {
		return err
	}
	if err := domain.Validate(domain.EntityAreaGroup, g); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, []string{db.AreaGroups}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.AreaGroups, domain.EntityAreaGroup, g.ID); err != nil {
			return err
		}
		_, err := tx.Put(ctx, db.AreaGroups, g)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update area group: %w", err)
	}
	return nil
}

// Delete removes the group and every membership row naming it in one
// transaction. Either both go or neither does.
func (s *AreaGroupStore) Delete(ctx context.Context, id int64) error {
	var memberships int
	err := s.db.Transaction(ctx, []string{db.AreaGroups, db.AreaGroupAreas}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.AreaGroups, domain.EntityAreaGroup, id); err != nil {
			return err
		}
		rows, err := byIndex[domain.AreaGroupArea](ctx, tx, db.AreaGroupAreas, "groupId", id)
		if err != nil {
			return err
		}
		for _, m := range rows {
			if _, err := tx.Delete(ctx, db.AreaGroupAreas, db.Key{m.GroupID, m.AreaID}); err != nil {
				return err
			}
		}
		memberships = len(rows)
		_, err = tx.Delete(ctx, db.AreaGroups, db.ID(id))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to delete area group: %w", err)
		}
		return &domain.TransactionError{Op: "delete area group", Err: err}
	}
	slog.Debug("area group deleted", "group_id", id, "memberships", memberships)
	return nil
}

// AddArea puts the area in the group. Both must exist; adding a pair twice
// fails with a *domain.ConstraintError.
func (s *AreaGroupStore) AddArea(ctx context.Context, groupID, areaID int64) error {
	m := &domain.AreaGroupArea{GroupID: groupID, AreaID: areaID}
	if err := domain.Validate(domain.EntityAreaGroupArea, m); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, []string{db.AreaGroups, db.Areas, db.AreaGroupAreas}, db.ReadWrite, func(tx *db.Tx) error {
		if err := mustExist(ctx, tx, db.AreaGroups, domain.EntityAreaGroup, groupID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, db.Areas, domain.EntityArea, areaID); err != nil {
			return err
		}
		_, err := tx.Add(ctx, db.AreaGroupAreas, m)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add area to group: %w", err)
	}
	return nil
}

// RemoveArea takes the area out of the group. Removing a pair that is not a
// member is a no-op.
func (s *AreaGroupStore) RemoveArea(ctx context.Context, groupID, areaID int64) error {
	if _, err := s.db.Delete(ctx, db.AreaGroupAreas, db.Key{groupID, areaID}); err != nil {
		return fmt.Errorf("failed to remove area from group: %w", err)
	}
	return nil
}

// ListAreas returns the member areas of the group in area id order, skipping
// memberships whose area has since been deleted. An unknown group has no
// members.
func (s *AreaGroupStore) ListAreas(ctx context.Context, groupID int64) (areas []*domain.Area, err error) {
	err = s.db.Transaction(ctx, []string{db.AreaGroupAreas, db.Areas}, db.ReadOnly, func(tx *db.Tx) error {
		areas, err = membersOf(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list areas in group: %w", err)
	}
	return areas, nil
}

// ListAreasNotInGroup returns every area that is not a member of the group.
func (s *AreaGroupStore) ListAreasNotInGroup(ctx context.Context, groupID int64) (areas []*domain.Area, err error) {
	err = s.db.Transaction(ctx, []string{db.AreaGroupAreas, db.Areas}, db.ReadOnly, func(tx *db.Tx) error {
		members, err := membersOf(ctx, tx, groupID)
		if err != nil {
			return err
		}
		in := make(map[int64]bool, len(members))
		for _, a := range members {
			in[a.ID] = true
		}

		everything, err := all[domain.Area](ctx, tx, db.Areas)
		if err != nil {
			return err
		}
		areas = make([]*domain.Area, 0, len(everything))
		for _, a := range everything {
			if !in[a.ID] {
				areas = append(areas, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list areas not in group: %w", err)
	}
	return areas, nil
}

// ListGroupsForArea returns the groups the area belongs to, in group id order.
func (s *AreaGroupStore) ListGroupsForArea(ctx context.Context, areaID int64) (groups []*domain.AreaGroup, err error) {
	err = s.db.Transaction(ctx, []string{db.AreaGroupAreas, db.AreaGroups}, db.ReadOnly, func(tx *db.Tx) error {
		rows, err := byIndex[domain.AreaGroupArea](ctx, tx, db.AreaGroupAreas, "areaId", areaID)
		if err != nil {
			return err
		}
		groups = make([]*domain.AreaGroup, 0, len(rows))
		for _, m := range rows {
			g, err := get[domain.AreaGroup](ctx, tx, db.AreaGroups, m.GroupID)
			if err != nil {
				return err
			}
			if g != nil {
				groups = append(groups, g)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for area: %w", err)
	}
	return groups, nil
}

func membersOf(ctx context.Context, tx *db.Tx, groupID int64) ([]*domain.Area, error) {
	rows, err := byIndex[domain.AreaGroupArea](ctx, tx, db.AreaGroupAreas, "groupId", groupID)
	if err != nil {
		return nil, err
	}
	areas := make([]*domain.Area, 0, len(rows))
	for _, m := range rows {
		a, err := get[domain.Area](ctx, tx, db.Areas, m.AreaID)
		if err != nil {
			return nil, err
		}
		if a != nil {
			areas = append(areas, a)
		}
	}
	return areas, nil
}
