package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrorf(t *testing.T) {
	orig := errors.New("node not found")
	err := WrapErrorf(orig, ErrNotFound, "location %d is not covered", 7)

	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrNotFound, appErr.Code())
	assert.Equal(t, "location 7 is not covered", appErr.Message())
	assert.Equal(t, "location 7 is not covered: node not found", err.Error())
	assert.ErrorIs(t, err, orig)

	err = NewErrorf(ErrBadParamInput, "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
