package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrNothingToSave      = errors.New("no hay cambios pendientes")
	ErrUnexpectedPayload  = errors.New("respuesta del backend con forma inesperada")
	ErrBackendUnavailable = errors.New("backend de la tienda no disponible")
	ErrBackendRejected    = errors.New("el backend rechazó la operación")
	ErrStaleResponse      = errors.New("respuesta obsoleta descartada")
)

// BackendError error de negocio reportado por el backend (success:false o HTTP 4xx).
// errors.Is(err, ErrBackendRejected) es verdadero para este tipo.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() error { return ErrBackendRejected }
