package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnknownRef   = errors.New("referencia desconocida para esta orden")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrLocked       = errors.New("cuenta bloqueada temporalmente")
	ErrTokenInvalid = errors.New("token inválido o expirado")
	ErrUserNotFound = errors.New("usuario no encontrado")
)
