package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	plain := NewNotFoundError("posts listing")
	assert.Equal(t, "[NOT_FOUND] posts listing not found", plain.Error())

	wrapped := NewStorageError("failed to read archive", stderrors.New("permission denied"))
	assert.Equal(t, "[STORAGE] failed to read archive: permission denied", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStorageError("write failed", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad row", nil).
		WithContext("path", "posts.csv").
		WithContext("row", 12)

	assert.Equal(t, "posts.csv", err.Context["path"])
	assert.Equal(t, 12, err.Context["row"])
}

func TestIsType(t *testing.T) {
	assert.True(t, IsType(NewValidationError("bad window"), ErrTypeValidation))
	assert.False(t, IsType(NewValidationError("bad window"), ErrTypeStorage))
	assert.False(t, IsType(stderrors.New("plain"), ErrTypeStorage))
	assert.False(t, IsType(nil, ErrTypeStorage))
}
