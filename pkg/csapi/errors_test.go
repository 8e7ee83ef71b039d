package csapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kind   error
	}{
		{http.StatusOK, nil},
		{http.StatusCreated, nil},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnauthorized, ErrAuthentication},
		{http.StatusForbidden, ErrPermission},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrUnexpectedStatus},
		{http.StatusTooManyRequests, ErrUnexpectedStatus},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, KindForStatus(tt.status))
		})
	}
}

func TestNewStatusError(t *testing.T) {
	t.Parallel()

	err := NewStatusError(http.StatusBadRequest, []byte(`{"error":"Cannot delete laboratory with existing storages"}`))

	assert.Equal(t, "validation failed (status 400): Cannot delete laboratory with existing storages", err.Error())
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))

	wrapped := fmt.Errorf("deleting laboratory 1: %w", err)
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, http.StatusBadRequest, StatusCode(wrapped))

	var apiErr *APIError
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, "Cannot delete laboratory with existing storages", apiErr.Message)
}

func TestParseErrorBody(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "物品不存在", ParseErrorBody([]byte(`{"error":"物品不存在"}`)))
	assert.Equal(t, "ok", ParseErrorBody([]byte(`{"message":"ok"}`)))
	assert.Equal(t, "Bad Gateway", ParseErrorBody([]byte("  Bad Gateway\n")))
	assert.Empty(t, ParseErrorBody(nil))
}

func TestTransportAndDecodeErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	transport := NewTransportError(cause)
	assert.True(t, IsTransport(transport))
	require.ErrorIs(t, transport, cause)
	assert.Zero(t, StatusCode(transport))

	decode := NewDecodeError(http.StatusOK, []byte(`{}`), fmt.Errorf("%w: laboratory", ErrMissingEnvelopeField))
	assert.True(t, IsDecode(decode))
	require.ErrorIs(t, decode, ErrMissingEnvelopeField)
	assert.Equal(t, "unexpected response shape (status 200): missing envelope field: laboratory", decode.Error())
}

func TestStatusCode_NonAPIError(t *testing.T) {
	t.Parallel()

	assert.Zero(t, StatusCode(errors.New("plain")))
	assert.Zero(t, StatusCode(nil))
}
