package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("op", "bad field")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("op", "missing")))
	assert.Equal(t, KindConflict, KindOf(Conflict("op", "illegal")))
	assert.Equal(t, KindStorage, KindOf(Storage("op", fmt.Errorf("boom"))))

	// Unclassified errors are treated as storage failures.
	assert.Equal(t, KindStorage, KindOf(fmt.Errorf("driver exploded")))
}

func TestKindOfWrapped(t *testing.T) {
	inner := NotFound("order.Get", "order 7 not found")
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
}

func TestShortagesOf(t *testing.T) {
	shortages := []model.Shortage{{ProductID: 4, Quantity: 3}}
	err := InsufficientStock("order.Transition", shortages)

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, shortages, ShortagesOf(err))
	assert.Nil(t, ShortagesOf(fmt.Errorf("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := Storage("order.Create", fmt.Errorf("connection reset"))
	assert.Contains(t, err.Error(), "order.Create")
	assert.Contains(t, err.Error(), "connection reset")
}
