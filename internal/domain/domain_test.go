package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsValidRecords(t *testing.T) {
	assert.NoError(t, Validate(EntityAreaType, AreaType{Name: "Kitchen"}))
	assert.NoError(t, Validate(EntityArea, Area{Name: "Sink", AreaTypeID: 1}))
	assert.NoError(t, Validate(EntityItemPart, ItemPart{Name: "Descale", ItemID: 1, FreqDays: 30}))
}

func TestValidateReportsFieldByJSONName(t *testing.T) {
	err := Validate(EntityItemPart, ItemPart{Name: "Descale", ItemID: 1, FreqDays: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, EntityItemPart, ve.Entity)
	assert.Equal(t, "freqDays", ve.Field)
}

func TestValidateRejectsBlankName(t *testing.T) {
	err := Validate(EntityAreaGroup, AreaGroup{Name: "   "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.Equal(t, "is required", ve.Reason)
}

func TestValidateJoinsEveryFailingField(t *testing.T) {
	err := Validate(EntityItemPart, ItemPart{FreqDays: -3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "itemId")
	assert.Contains(t, err.Error(), "freqDays")
}

func TestTypedErrorsMatchTheirKind(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", &NotFoundError{Entity: EntityItem, ID: 7}, ErrNotFound},
		{"constraint", &ConstraintError{Collection: "areaTypes", Detail: "areaTypes.name"}, ErrConstraint},
		{"validation", &ValidationError{Entity: EntityArea, Field: "name", Reason: "is required"}, ErrValidation},
		{"transaction", &TransactionError{Op: "delete item 1", Err: cause}, ErrTransaction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to do thing: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
		})
	}
}

func TestTransactionErrorKeepsCause(t *testing.T) {
	inner := &NotFoundError{Entity: EntityItemPart, ID: 3}
	err := &TransactionError{Op: "delete item 1", Err: inner}

	assert.ErrorIs(t, err, ErrTransaction)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "delete item 1: transaction rolled back: item part 3 not found", err.Error())
}
