package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "customer %d not found", 42)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindValidation))
}

func TestKindOfWrapped(t *testing.T) {
	inner := Wrap(KindPersistence, errors.New("connection reset"), "insert order")
	outer := fmt.Errorf("place order: %w", inner)

	assert.Equal(t, KindPersistence, KindOf(outer))
	assert.ErrorContains(t, outer, "connection reset")
}

func TestKindOfUntagged(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestInsufficientStockCarriesAvailable(t *testing.T) {
	var err error = InsufficientStock(3)

	var tagged *Error
	assert.True(t, errors.As(err, &tagged))
	assert.Equal(t, int64(3), tagged.Available)
	assert.Equal(t, KindInsufficientStock, tagged.Kind)
	assert.Contains(t, err.Error(), "available: 3")
}
