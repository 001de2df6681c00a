package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                  = errors.New("recurso no encontrado")
	ErrInvalidInput              = errors.New("entrada inválida")
	ErrDuplicate                 = errors.New("recurso duplicado")
	ErrUnauthorized              = errors.New("no autorizado")
	ErrForbidden                 = errors.New("acceso denegado")
	ErrConflict                  = errors.New("conflicto con el estado actual")
	ErrDuplicateProduct          = errors.New("producto repetido en el mismo documento")
	ErrNegativeStockConfirmation = errors.New("el stock quedaría negativo; se requiere confirmación")
	ErrInvalidTransferState      = errors.New("estado de transferencia inválido para la operación")
	ErrOverReceipt               = errors.New("cantidad recibida mayor a la transferida")
	ErrAlreadyApplied            = errors.New("la pengajuan ya fue aplicada")
	ErrConcurrentModification    = errors.New("el registro fue modificado por otra sesión")
	ErrOpnameFinalized           = errors.New("el stok opname ya está finalizado")
	ErrActivePengajuan           = errors.New("el registro ya tiene una pengajuan activa")
	ErrInvalidPengajuanState     = errors.New("estado de pengajuan inválido para la operación")
)

// ValidationError describe un campo inválido. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NegativeLine una línea cuyo stock resultante sería negativo.
type NegativeLine struct {
	ProductID string `json:"product_id"`
	ApotikID  string `json:"apotik_id"`
	Before    int64  `json:"before"`
	After     int64  `json:"after"`
}

// NegativeStockError lista las líneas que requieren confirmación explícita.
// No es un fallo definitivo: el caller puede reintentar con la confirmación.
type NegativeStockError struct {
	Lines []NegativeLine
}

func (e *NegativeStockError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("%s@%s %d→%d", l.ProductID, l.ApotikID, l.Before, l.After))
	}
	return fmt.Sprintf("%s (%s)", ErrNegativeStockConfirmation, strings.Join(parts, ", "))
}

func (e *NegativeStockError) Unwrap() error { return ErrNegativeStockConfirmation }

// CheckVersion devuelve ErrConcurrentModification si expected > 0 y no coincide.
func CheckVersion(expected, current int64) error {
	if expected > 0 && expected != current {
		return fmt.Errorf("%w: versión esperada %d, actual %d", ErrConcurrentModification, expected, current)
	}
	return nil
}
