package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("checkups.find", "checkup %s not found", "c1"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "checkup c1 not found", Message(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestStorageWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage("images.store", cause)

	assert.True(t, IsStorage(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "images.store: disk full", err.Error())
	assert.Nil(t, Storage("noop", nil))
}
