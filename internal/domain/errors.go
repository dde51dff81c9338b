package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrDuplicate ya existe un registro de stock para (producto, sucursal) u otra clave única.
	ErrDuplicate = errors.New("recurso duplicado")
	// ErrConflict el consecutivo no pudo asignarse tras los reintentos.
	ErrConflict = errors.New("conflicto con el estado actual")

	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidAdjustment      = errors.New("el ajuste dejaría la cantidad en negativo")
	ErrInvalidTransfer        = errors.New("traslado inválido")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")

	// ErrDuplicateMovement el movimiento (referencia + tipo) ya fue aplicado a ese registro de stock.
	ErrDuplicateMovement = errors.New("movimiento ya aplicado")

	// ErrSequenceConflict colisión al asignar un consecutivo; se reintenta internamente.
	ErrSequenceConflict = errors.New("colisión de consecutivo")
)
