package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAndCodeOf(t *testing.T) {
	err := New(CodeNotFound, "member not found")
	assert.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
	assert.Equal(t, CodeNotFound, CodeOf(err))

	t.Run("wrapped domain errors keep their code", func(t *testing.T) {
		wrapped := fmt.Errorf("handler: %w", err)
		assert.True(t, Is(wrapped, CodeNotFound))
		assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		plain := errors.New("disk full")
		assert.False(t, Is(plain, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(plain))
	})

	t.Run("nil has no code", func(t *testing.T) {
		assert.False(t, Is(nil, CodeInternal))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(CodeInternal, "failed to look up member", cause)

	assert.Equal(t, "failed to look up member", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeInternal))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
