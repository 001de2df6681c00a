package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Apotik-api/internal/domain/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// OpnameSelection producto a contar y unidad en la que se cuenta.
type OpnameSelection struct {
	ProductID string
	UnitID    string
}

// OpnameInput inicio de un conteo.
type OpnameInput struct {
	ApotikID string
	Date     time.Time
	Items    []OpnameSelection
}

// OpnameCount conteo físico de un producto (en la unidad del ítem).
type OpnameCount struct {
	ProductID string
	StokFisik int64
	Note      *string
}

// OpnameEngine stok opname: compara stock del sistema contra el conteo físico.
// Nunca modifica el stock; las diferencias se corrigen con un penyesuaian aparte.
type OpnameEngine struct {
	tx    TxRunner
	clock Clock
}

// NewOpnameEngine construye el motor. clock puede ser nil.
func NewOpnameEngine(tx TxRunner, clock Clock) *OpnameEngine {
	return &OpnameEngine{tx: tx, clock: clock}
}

// Start crea el opname en Draft tomando el stock actual como StokSistem (y StokFisik inicial).
func (e *OpnameEngine) Start(ctx context.Context, in OpnameInput) (*entity.Opname, error) {
	if in.ApotikID == "" {
		return nil, domain.Invalid("apotik_id", "requerido")
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "se requiere al menos un producto")
	}
	now := e.clock.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	var out *entity.Opname
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		if _, err := activeApotik(tx, "apotik_id", in.ApotikID); err != nil {
			return err
		}
		seen := make(map[string]bool, len(in.Items))
		items := make([]entity.OpnameItem, 0, len(in.Items))
		for _, sel := range in.Items {
			if sel.ProductID == "" {
				return domain.Invalid("items", "producto requerido")
			}
			if seen[sel.ProductID] {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, sel.ProductID)
			}
			seen[sel.ProductID] = true
			p, err := tx.Products().GetByID(sel.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Invalid("product_id", "no existe: "+sel.ProductID)
			}
			unit, ok := p.FindUnit(sel.UnitID)
			if !ok {
				return domain.Invalid("unit", "desconocida para el producto "+p.Code)
			}
			sistem, err := domaininv.ConvertFromBaseUnits(p, sel.UnitID, domaininv.Quantity(p, in.ApotikID))
			if err != nil {
				return err
			}
			items = append(items, entity.OpnameItem{
				ProductID:    sel.ProductID,
				UnitID:       sel.UnitID,
				Factor:       unit.Factor,
				StokSistem:   sistem,
				StokFisik:    sistem,
				NilaiSelisih: decimal.Zero,
			})
		}
		numbers, err := tx.Opnames().DocumentNumbers()
		if err != nil {
			return err
		}
		o := &entity.Opname{
			ID:        uuid.New().String(),
			NoOpname:  domaininv.NextDocumentNumber(entity.PrefixOpname, now, numbers),
			Date:      date,
			ApotikID:  in.ApotikID,
			Status:    entity.OpnameStatusDraft,
			Items:     items,
			Operator:  OperatorFrom(ctx),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Opnames().Create(o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCounts registra conteos físicos y recalcula Selisih y NilaiSelisih.
func (e *OpnameEngine) UpdateCounts(ctx context.Context, id string, counts []OpnameCount, expectedVersion int64) (*entity.Opname, error) {
	if len(counts) == 0 {
		return nil, domain.Invalid("counts", "se requiere al menos un conteo")
	}
	now := e.clock.now()
	var out *entity.Opname
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := getDraftOpname(tx, id, expectedVersion)
		if err != nil {
			return err
		}
		for _, c := range counts {
			idx := -1
			for i := range o.Items {
				if o.Items[i].ProductID == c.ProductID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return domain.Invalid("counts", "el producto "+c.ProductID+" no está en el opname")
			}
			if c.StokFisik < 0 {
				return domain.Invalid("counts", "el stok fisik no puede ser negativo")
			}
			it := &o.Items[idx]
			it.StokFisik = c.StokFisik
			if c.Note != nil {
				it.Note = *c.Note
			}
		}
		if err := recomputeVariance(tx, o); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := tx.Opnames().Update(o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Finalize pasa Draft a Selesai; el registro queda inmutable.
func (e *OpnameEngine) Finalize(ctx context.Context, id string, expectedVersion int64) (*entity.Opname, error) {
	now := e.clock.now()
	var out *entity.Opname
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := getDraftOpname(tx, id, expectedVersion)
		if err != nil {
			return err
		}
		o.Status = entity.OpnameStatusSelesai
		o.FinalizedAt = &now
		o.UpdatedAt = now
		if err := tx.Opnames().Update(o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete elimina un opname en Draft.
func (e *OpnameEngine) Delete(ctx context.Context, id string, expectedVersion int64) error {
	return e.tx.Run(ctx, func(tx repository.Tx) error {
		if _, err := getDraftOpname(tx, id, expectedVersion); err != nil {
			return err
		}
		return tx.Opnames().Delete(id)
	})
}

// Get un opname por ID.
func (e *OpnameEngine) Get(ctx context.Context, id string) (*entity.Opname, error) {
	var out *entity.Opname
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := tx.Opnames().GetByID(id)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("opname %s: %w", id, domain.ErrNotFound)
		}
		out = o
		return nil
	})
	return out, err
}

// List opname por apotik y estado (vacíos = todos).
func (e *OpnameEngine) List(ctx context.Context, apotikID, status string) ([]*entity.Opname, error) {
	var out []*entity.Opname
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Opnames().List(apotikID, status)
		return err
	})
	return out, err
}

func getDraftOpname(tx repository.Tx, id string, expectedVersion int64) (*entity.Opname, error) {
	o, err := tx.Opnames().GetByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("opname %s: %w", id, domain.ErrNotFound)
	}
	if o.Status == entity.OpnameStatusSelesai {
		return nil, fmt.Errorf("%w: %s", domain.ErrOpnameFinalized, o.NoOpname)
	}
	if err := domain.CheckVersion(expectedVersion, o.Version); err != nil {
		return nil, err
	}
	return o, nil
}

// recomputeVariance Selisih = StokFisik - StokSistem; NilaiSelisih al precio de compra actual.
func recomputeVariance(tx repository.Tx, o *entity.Opname) error {
	for i := range o.Items {
		it := &o.Items[i]
		it.Selisih = it.StokFisik - it.StokSistem
		price := decimal.Zero
		p, err := tx.Products().GetByID(it.ProductID)
		if err != nil {
			return err
		}
		if p != nil {
			price = p.PurchasePrice
		}
		it.NilaiSelisih = domaininv.VarianceValue(it.Selisih, it.Factor, price)
	}
	return nil
}
