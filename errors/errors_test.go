package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "transient", ErrorTransient.String())
	assert.Equal(t, "invalid", ErrorInvalid.String())
	assert.Equal(t, "fatal", ErrorFatal.String())
	assert.Equal(t, "unknown", ErrorClass(99).String())
}

func TestHTTPStatusErrorTerminal(t *testing.T) {
	tests := []struct {
		status   int
		terminal bool
	}{
		{http.StatusNotFound, true},
		{http.StatusForbidden, true},
		{http.StatusBadRequest, true},
		{http.StatusRequestTimeout, false},
		{http.StatusTooManyRequests, false},
		{http.StatusInternalServerError, false},
		{http.StatusBadGateway, false},
		{http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := &HTTPStatusError{StatusCode: tt.status, URL: "http://example.com/data"}
			assert.Equal(t, tt.terminal, err.Terminal())
			assert.Equal(t, !tt.terminal, IsTransient(err))
		})
	}
}

func TestHTTPStatusErrorMessage(t *testing.T) {
	err := &HTTPStatusError{StatusCode: 404, URL: "http://example.com/items"}
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "http://example.com/items")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrConnectionFailed))
	assert.True(t, IsTransient(ErrRequestTimeout))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("dial tcp: connection refused")))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(ErrRowInvalid))
}

func TestIsInvalid(t *testing.T) {
	assert.True(t, IsInvalid(ErrRowInvalid))
	assert.True(t, IsInvalid(ErrCacheCorrupted))
	assert.True(t, IsInvalid(ErrResourceNotConfigured))
	assert.False(t, IsInvalid(ErrConnectionFailed))
}

func TestWrapPreservesChain(t *testing.T) {
	wrapped := WrapTransient(ErrConnectionFailed, "datasync", "Fetch", "GET inventory")
	require.Error(t, wrapped)

	assert.True(t, Is(wrapped, ErrConnectionFailed))
	assert.True(t, IsTransient(wrapped))
	assert.Contains(t, wrapped.Error(), "datasync.Fetch")

	var ce *ClassifiedError
	require.True(t, As(wrapped, &ce))
	assert.Equal(t, ErrorTransient, ce.Class)
	assert.Equal(t, "datasync", ce.Component)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "c", "m", "a"))
	assert.NoError(t, WrapTransient(nil, "c", "m", "a"))
	assert.NoError(t, WrapInvalid(nil, "c", "m", "a"))
	assert.NoError(t, WrapFatal(nil, "c", "m", "a"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorInvalid, Classify(WrapInvalid(ErrRowInvalid, "n", "Validate", "row")))
	assert.Equal(t, ErrorFatal, Classify(ErrInvalidConfig))
	assert.Equal(t, ErrorTransient, Classify(ErrConnectionFailed))
	// Unknown errors default to transient so they remain retryable.
	assert.Equal(t, ErrorTransient, Classify(fmt.Errorf("mystery failure")))
}
