package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Apotik-api/internal/domain/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// ledger acumula cambios de stock dentro de una unidad de trabajo. Cada producto se lee una
// vez y se guarda una vez en flush, así varios movimientos sobre él se suman correctamente.
type ledger struct {
	products  repository.ProductRepository
	cache     map[string]*entity.Product
	touched   []string
	negatives []domain.NegativeLine
}

func newLedger(products repository.ProductRepository) *ledger {
	return &ledger{products: products, cache: make(map[string]*entity.Product)}
}

func (l *ledger) product(id string) (*entity.Product, error) {
	if p, ok := l.cache[id]; ok {
		return p, nil
	}
	p, err := l.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.Invalid("product_id", "no existe: "+id)
	}
	l.cache[id] = p
	return p, nil
}

// apply suma delta (unidades base) al stock de la apotik y registra la línea si requiere confirmación.
func (l *ledger) apply(productID, apotikID string, delta int64) (before, after int64, err error) {
	p, err := l.product(productID)
	if err != nil {
		return 0, 0, err
	}
	before = domaininv.Quantity(p, apotikID)
	after, err = domaininv.AddQuantity(before, delta)
	if err != nil {
		return 0, 0, err
	}
	domaininv.SetQuantity(p, apotikID, after)
	l.touch(productID)
	if domaininv.NeedsConfirmation(after) {
		l.negatives = append(l.negatives, domain.NegativeLine{ProductID: productID, ApotikID: apotikID, Before: before, After: after})
	}
	return before, after, nil
}

func (l *ledger) touch(id string) {
	for _, t := range l.touched {
		if t == id {
			return
		}
	}
	l.touched = append(l.touched, id)
}

// confirm devuelve NegativeStockError si hubo líneas negativas sin confirmación.
func (l *ledger) confirm(confirmed bool) error {
	if len(l.negatives) == 0 || confirmed {
		return nil
	}
	return &domain.NegativeStockError{Lines: l.negatives}
}

// flush guarda los productos modificados (cada Update incrementa su versión).
func (l *ledger) flush(now time.Time) error {
	for _, id := range l.touched {
		p := l.cache[id]
		p.UpdatedAt = now
		if err := l.products.Update(p); err != nil {
			return fmt.Errorf("guardar stock de %s: %w", id, err)
		}
	}
	l.touched = nil
	return nil
}

// StockLevel stock de un producto en una apotik activa.
type StockLevel struct {
	ApotikID   string `json:"apotik_id"`
	ApotikCode string `json:"apotik_code"`
	ApotikName string `json:"apotik_name"`
	Quantity   int64  `json:"quantity"`
}

// StockLedger consultas de stock por apotik (lectura).
type StockLedger struct {
	tx TxRunner
}

// NewStockLedger construye el servicio de consulta.
func NewStockLedger(tx TxRunner) *StockLedger {
	return &StockLedger{tx: tx}
}

// Quantity stock actual de un producto en una apotik, en unidades base.
func (s *StockLedger) Quantity(ctx context.Context, productID, apotikID string) (int64, error) {
	var qty int64
	err := s.tx.Run(ctx, func(tx repository.Tx) error {
		p, err := tx.Products().GetByID(productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		qty = domaininv.Quantity(p, apotikID)
		return nil
	})
	return qty, err
}

// Levels stock del producto en cada apotik activa, ordenado por código de apotik.
func (s *StockLedger) Levels(ctx context.Context, productID string) ([]StockLevel, error) {
	var out []StockLevel
	err := s.tx.Run(ctx, func(tx repository.Tx) error {
		p, err := tx.Products().GetByID(productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		apotiks, err := tx.Apotiks().List()
		if err != nil {
			return err
		}
		for _, a := range apotiks {
			if !a.Active {
				continue
			}
			out = append(out, StockLevel{ApotikID: a.ID, ApotikCode: a.Code, ApotikName: a.Name, Quantity: domaininv.Quantity(p, a.ID)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ApotikCode < out[j].ApotikCode })
	return out, nil
}

// activeApotik valida que la apotik exista y esté activa.
func activeApotik(tx repository.Tx, field, id string) (*entity.Apotik, error) {
	if id == "" {
		return nil, domain.Invalid(field, "requerido")
	}
	a, err := tx.Apotiks().GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil || !a.Active {
		return nil, domain.Invalid(field, "apotik inexistente o inactiva: "+id)
	}
	return a, nil
}
