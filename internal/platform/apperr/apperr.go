// Package apperr define la taxonomía de errores compartida por dominio, stores y handlers.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation error")
	ErrTransient    = errors.New("transient store error")
	ErrConflict     = errors.New("conflict")
)

// Validation envuelve ErrValidation con un detalle legible para el cliente.
func Validation(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}

// Transient marca err como reintentable. nil se devuelve tal cual.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// FromContext traduce cancelación/timeout de ctx a ErrTransient.
// Cualquier otro error pasa sin cambios.
func FromContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient(err)
	}
	return err
}

// HTTPStatus mapea un error del dominio a su status HTTP.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteHTTP responde con texto plano como el resto de handlers.
// Los 500 no exponen el detalle interno.
func WriteHTTP(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusInternalServerError:
		http.Error(w, "internal error", status)
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "1")
		http.Error(w, "temporarily unavailable", status)
	default:
		http.Error(w, err.Error(), status)
	}
}
