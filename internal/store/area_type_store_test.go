package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeclean/internal/domain"
)

func TestAreaTypeStoreCreate(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	at, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)
	assert.NotZero(t, at.ID)
	assert.Equal(t, "Kitchen", at.Name)

	got, err := r.AreaTypes.GetByID(ctx, at.ID)
	require.NoError(t, err)
	assert.Equal(t, at, got)
}

func TestAreaTypeStoreCreateDuplicateName(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)

	_, err = r.AreaTypes.Create(ctx, "Kitchen")
	assert.ErrorIs(t, err, domain.ErrConstraint)

	list, err := r.AreaTypes.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAreaTypeStoreCreateBlankName(t *testing.T) {
	r, _, _ := newTestRepos(t)

	_, err := r.AreaTypes.Create(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrValidation)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestAreaTypeStoreGetByIDNotFound(t *testing.T) {
	r, _, _ := newTestRepos(t)

	at, err := r.AreaTypes.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, at)
}

func TestAreaTypeStoreUpdate(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	at, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)
	other, err := r.AreaTypes.Create(ctx, "Bathroom")
	require.NoError(t, err)

	at.Name = "Galley"
	require.NoError(t, r.AreaTypes.Update(ctx, at))
	got, err := r.AreaTypes.GetByID(ctx, at.ID)
	require.NoError(t, err)
	assert.Equal(t, "Galley", got.Name)

	other.Name = "Galley"
	assert.ErrorIs(t, r.AreaTypes.Update(ctx, other), domain.ErrConstraint)

	err = r.AreaTypes.Update(ctx, &domain.AreaType{ID: 99, Name: "Attic"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = r.AreaTypes.Update(ctx, &domain.AreaType{Name: "Attic"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAreaTypeStoreDeleteLeavesAreas(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	at, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)
	area, err := r.Areas.Create(ctx, "Sink", at.ID)
	require.NoError(t, err)

	require.NoError(t, r.AreaTypes.Delete(ctx, at.ID))
	assert.ErrorIs(t, r.AreaTypes.Delete(ctx, at.ID), domain.ErrNotFound)

	got, err := r.Areas.GetByID(ctx, area.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, at.ID, got.AreaTypeID)
}

func TestAreaTypeStoreListAreas(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()

	kitchen, err := r.AreaTypes.Create(ctx, "Kitchen")
	require.NoError(t, err)
	bath, err := r.AreaTypes.Create(ctx, "Bathroom")
	require.NoError(t, err)

	_, err = r.Areas.Create(ctx, "Sink", kitchen.ID)
	require.NoError(t, err)
	_, err = r.Areas.Create(ctx, "Tub", bath.ID)
	require.NoError(t, err)
	_, err = r.Areas.Create(ctx, "Oven", kitchen.ID)
	require.NoError(t, err)

	areas, err := r.AreaTypes.ListAreas(ctx, kitchen.ID)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "Sink", areas[0].Name)
	assert.Equal(t, "Oven", areas[1].Name)

	for _, a := range areas {
		assert.Equal(t, kitchen.ID, a.AreaTypeID)
	}

	none, err := r.AreaTypes.ListAreas(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}
