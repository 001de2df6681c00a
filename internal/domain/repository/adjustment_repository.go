package repository

import (
	"time"

	"github.com/jhoicas/Apotik-api/internal/domain/entity"
)

// AdjustmentFilter filtros opcionales para el histórico de penyesuaian.
type AdjustmentFilter struct {
	ApotikID  string
	ProductID string
	NoBukti   string
	From, To  *time.Time
}

// AdjustmentRepository define el puerto de persistencia para las líneas de penyesuaian stok.
type AdjustmentRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByNoBukti(noBukti string) ([]*entity.StockMovement, error)
	List(filter AdjustmentFilter) ([]*entity.StockMovement, error)
	Update(movement *entity.StockMovement) error
	Delete(id string) error
	// DocumentNumbers devuelve los NoBukti emitidos (para numeración secuencial).
	DocumentNumbers() ([]string, error)
}
