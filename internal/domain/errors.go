package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrInvalidTransition la acción no está permitida desde el estado actual del flujo
	// (recibir una orden cancelada, despachar un traslado en borrador, etc.).
	ErrInvalidTransition = errors.New("transición de estado inválida")
	// ErrOverReceive la recepción superaría la cantidad ordenada de la línea.
	ErrOverReceive = errors.New("cantidad recibida supera la ordenada")
	// ErrItemNotInOrder el repuesto recibido no pertenece a la orden de compra.
	ErrItemNotInOrder = errors.New("el repuesto no está en la orden")
)
