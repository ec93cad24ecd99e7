package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/homeclean/internal/domain"
)

func TestItemPartStoreCreate(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	item := seedItem(t, r)

	done := time.Date(2024, 2, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	part, err := r.ItemParts.Create(ctx, "Descale", item.ID, 30, &done)
	require.NoError(t, err)
	assert.NotZero(t, part.ID)

	got, err := r.ItemParts.GetByID(ctx, part.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastDoneAt)
	assert.True(t, done.Equal(*got.LastDoneAt))
	assert.Equal(t, time.UTC, got.LastDoneAt.Location())
}

func TestItemPartStoreCreateInvalid(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	item := seedItem(t, r)

	tests := []struct {
		name     string
		partName string
		itemID   int64
		freqDays int
		field    string
	}{
		{name: "blank name", partName: "", itemID: item.ID, freqDays: 7, field: "name"},
		{name: "zero frequency", partName: "Descale", itemID: item.ID, freqDays: 0, field: "freqDays"},
		{name: "negative frequency", partName: "Descale", itemID: item.ID, freqDays: -3, field: "freqDays"},
		{name: "missing item id", partName: "Descale", itemID: 0, freqDays: 7, field: "itemId"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.ItemParts.Create(ctx, tc.partName, tc.itemID, tc.freqDays, nil)
			require.ErrorIs(t, err, domain.ErrValidation)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	_, err := r.ItemParts.Create(ctx, "Descale", 404, 7, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemPartStoreMarkDone(t *testing.T) {
	r, _, c := newTestRepos(t)
	ctx := context.Background()
	item := seedItem(t, r)

	part, err := r.ItemParts.Create(ctx, "Descale", item.ID, 30, nil)
	require.NoError(t, err)

	c.Advance(90 * time.Minute)
	done, err := r.ItemParts.MarkDone(ctx, part.ID)
	require.NoError(t, err)
	require.NotNil(t, done.LastDoneAt)
	assert.True(t, c.Now().Equal(*done.LastDoneAt))
	assert.Equal(t, part.Name, done.Name)
	assert.Equal(t, part.FreqDays, done.FreqDays)

	_, err = r.ItemParts.MarkDone(ctx, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemPartStoreMarkDoneAfterDelete(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	item := seedItem(t, r)

	part, err := r.ItemParts.Create(ctx, "Descale", item.ID, 30, nil)
	require.NoError(t, err)
	require.NoError(t, r.ItemParts.Delete(ctx, part.ID))

	_, err = r.ItemParts.MarkDone(ctx, part.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := r.ItemParts.GetByID(ctx, part.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestItemPartStoreUpdate(t *testing.T) {
	r, _, _ := newTestRepos(t)
	ctx := context.Background()
	item := seedItem(t, r)

	part, err := r.ItemParts.Create(ctx, "Descale", item.ID, 30, nil)
	require.NoError(t, err)

	part.FreqDays = 14
	require.NoError(t, r.ItemParts.Update(ctx, part))

	parts, err := r.ItemParts.ListByItemID(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 14, parts[0].FreqDays)
	assert.Nil(t, parts[0].LastDoneAt)

	assert.ErrorIs(t, r.ItemParts.Update(ctx, &domain.ItemPart{ID: 9, Name: "x", ItemID: item.ID, FreqDays: 1}), domain.ErrNotFound)
	assert.ErrorIs(t, r.ItemParts.Delete(ctx, 9), domain.ErrNotFound)
}
