package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := ErrNoGapsFound.Withf("No gaps found for assessment %s", "a-1")
	assert.True(t, errors.Is(err, ErrNoGapsFound))
	assert.False(t, errors.Is(err, ErrGapNotFound))

	wrapped := fmt.Errorf("generate: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNoGapsFound))
	assert.Equal(t, KindPrecondition, KindOf(wrapped))
	assert.Equal(t, CodeNoGapsFound, CodeOf(wrapped))
	assert.Equal(t, "No gaps found for assessment a-1", MessageOf(wrapped))
}

func TestStorage(t *testing.T) {
	assert.Nil(t, Storage(nil, "load"))

	io := errors.New("connection reset")
	err := Storage(io, "load assessment")
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, CodeStorageFailure, CodeOf(err))
	assert.ErrorIs(t, err, io)

	// typed errors are not reclassified
	assert.Equal(t, KindNotFound, KindOf(Storage(ErrVendorNotFound, "load vendor")))
}

func TestKindOf_Untyped(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, "boom", MessageOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindPrecondition, http.StatusConflict},
		{KindValidation, http.StatusBadRequest},
		{KindAccessDenied, http.StatusForbidden},
		{KindPaymentRequired, http.StatusPaymentRequired},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindStorage, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.kind), tt.kind)
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "VENDOR_NOT_FOUND: vendor not found", ErrVendorNotFound.Error())
	err := ErrVendorNotFound.Wrap(errors.New("io"))
	assert.Equal(t, "VENDOR_NOT_FOUND: vendor not found: io", err.Error())
}
