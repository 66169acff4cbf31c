package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("pet: %w", ErrNotFound), http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{Validation("kind must be one of feed, play"), http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{Transient(errors.New("connection refused")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		require.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}

func TestFromContext_DeadlineIsTransient(t *testing.T) {
	req := require.New(t)

	err := FromContext(fmt.Errorf("query: %w", context.DeadlineExceeded))
	req.ErrorIs(err, ErrTransient)
	req.ErrorIs(err, context.DeadlineExceeded)

	other := errors.New("syntax error")
	req.Equal(other, FromContext(other))
}

func TestTransient_DoesNotDoubleWrap(t *testing.T) {
	err := Transient(errors.New("timeout"))
	require.Equal(t, err, Transient(err))
	require.Nil(t, Transient(nil))
}

func TestWriteHTTP_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTTP(rec, errors.New("pq: password authentication failed"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "password")

	rec = httptest.NewRecorder()
	WriteHTTP(rec, Transient(errors.New("dial tcp")))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}
