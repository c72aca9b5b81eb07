// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package dxerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusPreconditionFailed, KindPreconditionFailed},
		{http.StatusUnprocessableEntity, KindValidationFail},
		{http.StatusLocked, KindLocked},
		{http.StatusFailedDependency, KindFailedDependency},
		{http.StatusInternalServerError, KindInternalServerError},
		// Unlisted statuses fall back by class.
		{http.StatusBadGateway, KindInternalServerError},
		{http.StatusTeapot, KindBadRequest},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FromStatus(tt.status), "status %d", tt.status)
	}
}

func TestFromHTTPKeepsStatusAndDetails(t *testing.T) {
	t.Parallel()

	details := []Detail{{Message: "field is required", ValidationPath: ".Amount"}}
	err := FromHTTP(http.StatusUnprocessableEntity, "validation failed", details)

	assert.Equal(t, KindValidationFail, err.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	require.Len(t, err.Details, 1)
	assert.Equal(t, ".Amount", err.Details[0].ValidationPath)
}

func TestAsPassesThroughTaggedErrors(t *testing.T) {
	t.Parallel()

	orig := New(KindNotFound, "case %q not found", "E-1")
	got := As(orig)
	assert.Same(t, orig, got)
}

func TestAsWrapsUnknownErrors(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")
	got := As(plain)
	assert.Equal(t, KindInternalServerError, got.Kind)
	assert.ErrorIs(t, got, plain)
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindConnectionError, cause)
	assert.Equal(t, KindConnectionError, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CONNECTION_ERROR")
}
