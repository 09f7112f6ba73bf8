package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInactiveProduct   = errors.New("producto inactivo")
	// ErrTransientStore timeout o contención del almacenamiento; la operación completa puede reintentarse.
	ErrTransientStore = errors.New("falla transitoria del almacenamiento")
	// ErrInconsistent estado que no admite resolución automática; requiere intervención del operador.
	ErrInconsistent = errors.New("estado inconsistente, requiere intervención manual")
)

// IsRetryable indica si el llamador puede reintentar la operación completa sin efectos que deshacer.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}
