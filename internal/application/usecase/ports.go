package usecase

import (
	"context"

	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// TxRunner ejecuta una unidad de trabajo sobre el snapshot.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Tx) error) error
}
