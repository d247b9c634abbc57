package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	err := New(CodeConflict, "a pending verification already exists")

	assert.True(t, Is(err, CodeConflict))
	assert.False(t, Is(err, CodeNotFound))
	assert.False(t, Is(errors.New("plain"), CodeConflict))
	assert.False(t, Is(nil, CodeConflict))
}

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeUnavailable, "record store unreachable", cause)

	assert.True(t, Is(err, CodeUnavailable))
	assert.True(t, errors.Is(err, cause))

	// Wrapping again with fmt keeps the code reachable.
	outer := fmt.Errorf("submit: %w", err)
	assert.True(t, Is(outer, CodeUnavailable))
	assert.Equal(t, CodeUnavailable, CodeOf(outer))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthenticated: http.StatusUnauthorized,
		CodeForbidden:       http.StatusForbidden,
		CodeInvalidUpload:   http.StatusBadRequest,
		CodeConflict:        http.StatusConflict,
		CodeInvalidState:    http.StatusUnprocessableEntity,
		CodeInvalidCursor:   http.StatusBadRequest,
		CodeNotFound:        http.StatusNotFound,
		CodeUnavailable:     http.StatusServiceUnavailable,
		CodeBadRequest:      http.StatusBadRequest,
		CodeInternal:        http.StatusInternalServerError,
		Code("mystery"):     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
