package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

// seedAreas creates one area type and an area per name.
func seedAreas(t *testing.T, r *Repositories, names ...string) []*domain.Area {
	t.Helper()
	ctx := context.Background()
	at, err := r.AreaTypes.Create(ctx, "Room")
	require.NoError(t, err)

	areas := make([]*domain.Area, 0, len(names))
	for _, name := range names {
		a, err := r.Areas.Create(ctx, name, at.ID)
		require.NoError(t, err)
		areas = append(areas, a)
	}
	return areas
}

func ids[T any](vs []*T, id func(*T) int64) []int64 {
	out := make([]int64, 0, len(vs))
	for _, v := range vs {
		out = append(out, id(v))
	}
	return out
}

func areaID(a *domain.Area) int64       { return a.ID }
func groupID(g *domain.AreaGroup) int64 { return g.ID }

func TestAreaGroupStoreCreateDuplicateName(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)
	_, err = r.AreaGroups.Create(ctx, "Wet Areas")
	assert.ErrorIs(t, err, domain.ErrConstraint)
}

func TestAreaGroupStoreUpdate(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	g, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)

	g.Name = "Damp Areas"
	require.NoError(t, r.AreaGroups.Update(ctx, g))

	got, err := r.AreaGroups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Damp Areas", got.Name)

	err = r.AreaGroups.Update(ctx, &domain.AreaGroup{ID: 50, Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAreaGroupStoreAddArea(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	areas := seedAreas(t, r, "Sink", "Tub")

	g, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)

	require.NoError(t, r.AreaGroups.AddArea(ctx, g.ID, areas[0].ID))

	err = r.AreaGroups.AddArea(ctx, g.ID, areas[0].ID)
	assert.ErrorIs(t, err, domain.ErrConstraint)

	err = r.AreaGroups.AddArea(ctx, g.ID, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = r.AreaGroups.AddArea(ctx, 99, areas[1].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	members, err := r.AreaGroups.ListAreas(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{areas[0].ID}, ids(members, areaID))
}

func TestAreaGroupStoreRemoveAreaIsIdempotent(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	areas := seedAreas(t, r, "Sink")

	g, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)
	require.NoError(t, r.AreaGroups.AddArea(ctx, g.ID, areas[0].ID))

	require.NoError(t, r.AreaGroups.RemoveArea(ctx, g.ID, areas[0].ID))
	require.NoError(t, r.AreaGroups.RemoveArea(ctx, g.ID, areas[0].ID))
	require.NoError(t, r.AreaGroups.RemoveArea(ctx, 77, 88))

	members, err := r.AreaGroups.ListAreas(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestAreaGroupStoreMembershipQueries(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	areas := seedAreas(t, r, "Sink", "Tub", "Hall", "Garage")

	wet, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)
	upstairs, err := r.AreaGroups.Create(ctx, "Upstairs")
	require.NoError(t, err)

	require.NoError(t, r.AreaGroups.AddArea(ctx, wet.ID, areas[1].ID))
	require.NoError(t, r.AreaGroups.AddArea(ctx, wet.ID, areas[0].ID))
	require.NoError(t, r.AreaGroups.AddArea(ctx, upstairs.ID, areas[1].ID))
	require.NoError(t, r.AreaGroups.AddArea(ctx, upstairs.ID, areas[2].ID))

	members, err := r.AreaGroups.ListAreas(ctx, wet.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{areas[0].ID, areas[1].ID}, ids(members, areaID))

	outside, err := r.AreaGroups.ListAreasNotInGroup(ctx, wet.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{areas[2].ID, areas[3].ID}, ids(outside, areaID))

	groups, err := r.AreaGroups.ListGroupsForArea(ctx, areas[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{wet.ID, upstairs.ID}, ids(groups, groupID))

	// Every membership is visible from both sides.
	for _, g := range []*domain.AreaGroup{wet, upstairs} {
		members, err := r.AreaGroups.ListAreas(ctx, g.ID)
		require.NoError(t, err)
		for _, a := range members {
			groups, err := r.AreaGroups.ListGroupsForArea(ctx, a.ID)
			require.NoError(t, err)
			assert.Contains(t, ids(groups, groupID), g.ID)
		}
	}
}

func TestAreaGroupStoreListAreasSkipsDeletedAreas(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	areas := seedAreas(t, r, "Sink", "Tub")

	g, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)
	require.NoError(t, r.AreaGroups.AddArea(ctx, g.ID, areas[0].ID))
	require.NoError(t, r.AreaGroups.AddArea(ctx, g.ID, areas[1].ID))

	require.NoError(t, r.Areas.Delete(ctx, areas[0].ID))

	members, err := r.AreaGroups.ListAreas(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{areas[1].ID}, ids(members, areaID))

	outside, err := r.AreaGroups.ListAreasNotInGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, outside)
}

func TestAreaGroupStoreDeleteCascades(t *testing.T) {
	r, s, _ := newTestRepos(t)
	ctx := context.Background()
	areas := seedAreas(t, r, "Sink", "Tub")

	wet, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)
	other, err := r.AreaGroups.Create(ctx, "Other")
	require.NoError(t, err)
	require.NoError(t, r.AreaGroups.AddArea(ctx, wet.ID, areas[0].ID))
	require.NoError(t, r.AreaGroups.AddArea(ctx, wet.ID, areas[1].ID))
	require.NoError(t, r.AreaGroups.AddArea(ctx, other.ID, areas[0].ID))

	require.NoError(t, r.AreaGroups.Delete(ctx, wet.ID))

	rows, err := s.GetByIndex(ctx, db.AreaGroupAreas, "groupId", wet.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.GetByIndex(ctx, db.AreaGroupAreas, "groupId", other.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	assert.ErrorIs(t, r.AreaGroups.Delete(ctx, wet.ID), domain.ErrNotFound)
}

func TestAreaGroupStoreDeleteIsAtomic(t *testing.T) {
	r, s, _ := newTestRepos(t)
	ctx := context.Background()
	areas := seedAreas(t, r, "Sink", "Tub")

	g, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)
	require.NoError(t, r.AreaGroups.AddArea(ctx, g.ID, areas[0].ID))
	require.NoError(t, r.AreaGroups.AddArea(ctx, g.ID, areas[1].ID))

	failOn(t, s, db.AreaGroups)

	err = r.AreaGroups.Delete(ctx, g.ID)
	require.ErrorIs(t, err, domain.ErrTransaction)
	assert.Contains(t, err.Error(), "simulated fault")

	got, err := r.AreaGroups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	members, err := r.AreaGroups.ListAreas(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAreaGroupStoreDeleteRollsBackWhenOneMembershipFails(t *testing.T) {
	r, s, _ := newTestRepos(t)
	ctx := context.Background()
	areas := seedAreas(t, r, "Sink", "Tub", "Shower")

	g, err := r.AreaGroups.Create(ctx, "Wet Areas")
	require.NoError(t, err)
	for _, a := range areas {
		require.NoError(t, r.AreaGroups.AddArea(ctx, g.ID, a.ID))
	}

	failOnRow(t, s, db.AreaGroupAreas, fmt.Sprintf("OLD.areaId = %d", areas[1].ID))

	err = r.AreaGroups.Delete(ctx, g.ID)
	require.ErrorIs(t, err, domain.ErrTransaction)

	got, err := r.AreaGroups.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	members, err := r.AreaGroups.ListAreas(ctx, g.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(areas, areaID), ids(members, areaID))
}
