package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator()
	v.Field("document_id", "not-a-uuid", UUID)
	v.Field("page", 0, PositivePage)
	v.Field("raw", "", Required)

	err := v.Error()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "document_id")
	assert.Contains(t, appErr.Message, "page")
	assert.Contains(t, appErr.Message, "raw")
}

func TestValidatorPasses(t *testing.T) {
	v := NewValidator()
	v.Field("document_id", "0b9f9ad6-3f62-4bb1-8a9f-1a8f4c9e2d01", Required, UUID)
	v.Field("page", 3, PositivePage)

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
}

func TestUUIDAllowsEmpty(t *testing.T) {
	assert.Nil(t, UUID("id", ""))
	assert.NotNil(t, UUID("id", "nope"))
	assert.NotNil(t, UUID("id", 42))
}

func TestRequired(t *testing.T) {
	assert.NotNil(t, Required("f", nil))
	assert.NotNil(t, Required("f", "   "))
	assert.Nil(t, Required("f", "x"))

	var p *string
	assert.NotNil(t, Required("f", p))
	s := "x"
	assert.Nil(t, Required("f", &s))
}
