package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeclean/internal/domain"
)

func TestAreaStoreCreate(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	at, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)

	area, err := r.Areas.Create(ctx, "Sink", at.ID)
	require.NoError(t, err)
	assert.NotZero(t, area.ID)
	assert.Equal(t, at.ID, area.AreaTypeID)
}

func TestAreaStoreCreateUnknownAreaType(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := r.Areas.Create(ctx, "Sink", 7)
	require.ErrorIs(t, err, domain.ErrNotFound)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.EntityAreaType, nf.Entity)
	assert.Equal(t, int64(7), nf.ID)

	areas, err := r.Areas.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestAreaStoreCreateInvalid(t *testing.T) {
	r, _, _ := newTestRepos(t)

	_, err := r.Areas.Create(context.Background(), "", 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "areaTypeId")
}

func TestAreaStoreDuplicateNamesAllowed(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	at, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)
	_, err = r.Areas.Create(ctx, "Sink", at.ID)
	require.NoError(t, err)
	_, err = r.Areas.Create(ctx, "Sink", at.ID)
	require.NoError(t, err)
}

func TestAreaStoreUpdate(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	kitchen, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)
	bath, err := r.AreaTypes.Create(ctx, "Bathroom")
	require.NoError(t, err)
	area, err := r.Areas.Create(ctx, "Sink", kitchen.ID)
	require.NoError(t, err)

	area.AreaTypeID = bath.ID
	require.NoError(t, r.Areas.Update(ctx, area))

	moved, err := r.Areas.ListByAreaTypeID(ctx, bath.ID)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, area.ID, moved[0].ID)

	left, err := r.Areas.ListByAreaTypeID(ctx, kitchen.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	area.AreaTypeID = 99
	assert.ErrorIs(t, r.Areas.Update(ctx, area), domain.ErrNotFound)
}

func TestAreaStoreDeleteLeavesItems(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	at, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)
	area, err := r.Areas.Create(ctx, "Sink", at.ID)
	require.NoError(t, err)
	item, err := r.Items.Create(ctx, "Faucet", area.ID)
	require.NoError(t, err)

	require.NoError(t, r.Areas.Delete(ctx, area.ID))

	got, err := r.Areas.GetByID(ctx, area.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	items, err := r.Areas.ListItems(ctx, area.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)

	assert.ErrorIs(t, r.Areas.Delete(ctx, area.ID), domain.ErrNotFound)
}
