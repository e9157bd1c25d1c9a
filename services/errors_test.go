package services

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestFailNormalisesStoreErrors(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := fail("create delivery", cause, nil)

	assert.Equal(t, "failed to create delivery", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Cause(err))
	assert.False(t, IsPrecondition(err))
}

func TestFailKeepsPreconditions(t *testing.T) {
	err := fail("delete driver", errors.Wrapf(ErrDriverHasDeliveries, "driver %s", "d1"), nil)

	assert.True(t, errors.Is(err, ErrDriverHasDeliveries))
	assert.True(t, IsPrecondition(err))
	assert.Contains(t, err.Error(), "d1")

	var opErr *OperationError
	assert.False(t, errors.As(err, &opErr))
	assert.Nil(t, fail("noop", nil, nil))
}
