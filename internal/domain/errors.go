package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrInvalidState operación no permitida para el estado actual del pedido o de la ubicación.
	ErrInvalidState = errors.New("estado inválido para la operación")
	// ErrSettledConflict el pedido tiene cobros o boletos ya liquidados.
	ErrSettledConflict = errors.New("existen cobros liquidados")
)
