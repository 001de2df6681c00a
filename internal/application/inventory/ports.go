package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// TxRunner ejecuta una unidad de trabajo sobre el snapshot, pasando repositorios atados a ella.
// Si fn devuelve error no se confirma ninguna colección.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Tx) error) error
}

// Clock permite fijar la hora en tests.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// DefaultOperator se usa cuando no hay usuario identificado.
const DefaultOperator = "System"

type operatorKey struct{}

// WithOperator guarda en ctx el email del usuario que ejecuta la operación.
func WithOperator(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, operatorKey{}, email)
}

// OperatorFrom devuelve el email guardado en ctx o DefaultOperator.
func OperatorFrom(ctx context.Context) string {
	if email, ok := ctx.Value(operatorKey{}).(string); ok && strings.TrimSpace(email) != "" {
		return email
	}
	return DefaultOperator
}
