package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Apotik-api/internal/domain/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// AdjustmentLine cantidad firmada en la unidad UnitID (vacía = unidad base).
type AdjustmentLine struct {
	ProductID string
	UnitID    string
	Qty       int64
}

// AdjustmentInput un lote de penyesuaian sobre una apotik.
type AdjustmentInput struct {
	ApotikID        string
	Date            time.Time
	Note            string
	Lines           []AdjustmentLine
	ConfirmNegative bool
}

// AdjustmentResult el lote confirmado.
type AdjustmentResult struct {
	NoBukti   string
	Movements []*entity.StockMovement
}

// AdjustmentEngine aplica penyesuaian stok y registra su histórico.
type AdjustmentEngine struct {
	tx    TxRunner
	clock Clock
}

// NewAdjustmentEngine construye el motor. clock puede ser nil.
func NewAdjustmentEngine(tx TxRunner, clock Clock) *AdjustmentEngine {
	return &AdjustmentEngine{tx: tx, clock: clock}
}

// Apply valida el lote, calcula antes/después por línea y lo confirma completo o nada.
// Las líneas sin producto o con cantidad cero se ignoran.
func (e *AdjustmentEngine) Apply(ctx context.Context, in AdjustmentInput) (*AdjustmentResult, error) {
	lines := make([]AdjustmentLine, 0, len(in.Lines))
	seen := make(map[string]bool)
	for _, l := range in.Lines {
		if l.ProductID == "" || l.Qty == 0 {
			continue
		}
		if seen[l.ProductID] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, l.ProductID)
		}
		seen[l.ProductID] = true
		lines = append(lines, l)
	}
	if in.ApotikID == "" {
		return nil, domain.Invalid("apotik_id", "requerido")
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("lines", "se requiere al menos una línea con producto y cantidad distinta de cero")
	}

	now := e.clock.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	operator := OperatorFrom(ctx)
	result := &AdjustmentResult{}

	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		if _, err := activeApotik(tx, "apotik_id", in.ApotikID); err != nil {
			return err
		}
		lg := newLedger(tx.Products())
		movements := make([]*entity.StockMovement, 0, len(lines))
		for _, l := range lines {
			p, err := lg.product(l.ProductID)
			if err != nil {
				return err
			}
			delta, err := domaininv.ConvertToBaseUnits(p, l.UnitID, l.Qty)
			if err != nil {
				return err
			}
			before, after, err := lg.apply(l.ProductID, in.ApotikID, delta)
			if err != nil {
				return err
			}
			movements = append(movements, &entity.StockMovement{
				ID:        uuid.New().String(),
				Date:      date,
				ApotikID:  in.ApotikID,
				ProductID: l.ProductID,
				UnitID:    l.UnitID,
				UnitQty:   l.Qty,
				Before:    before,
				Delta:     delta,
				After:     after,
				Note:      in.Note,
				Operator:  operator,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if err := lg.confirm(in.ConfirmNegative); err != nil {
			return err
		}

		numbers, err := tx.Adjustments().DocumentNumbers()
		if err != nil {
			return err
		}
		noBukti := domaininv.NextDocumentNumber(entity.PrefixAdjustment, now, numbers)
		for _, m := range movements {
			m.NoBukti = noBukti
			if err := tx.Adjustments().Create(m); err != nil {
				return err
			}
		}
		if err := lg.flush(now); err != nil {
			return err
		}
		result.NoBukti = noBukti
		result.Movements = movements
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List histórico de líneas de penyesuaian, más recientes primero.
func (e *AdjustmentEngine) List(ctx context.Context, filter repository.AdjustmentFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Adjustments().List(filter)
		return err
	})
	return out, err
}

// GetBatch líneas de un mismo NoBukti.
func (e *AdjustmentEngine) GetBatch(ctx context.Context, noBukti string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Adjustments().ListByNoBukti(noBukti)
		if err == nil && len(out) == 0 {
			err = fmt.Errorf("penyesuaian %s: %w", noBukti, domain.ErrNotFound)
		}
		return err
	})
	return out, err
}

// targetMovements resuelve las líneas afectadas por un target (una línea o el lote completo).
func targetMovements(tx repository.Tx, target entity.PengajuanTarget) ([]*entity.StockMovement, error) {
	if target.IsGlobal {
		if target.NoBukti == "" {
			return nil, domain.Invalid("target.noBukti", "requerido para un lote")
		}
		list, err := tx.Adjustments().ListByNoBukti(target.NoBukti)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("penyesuaian %s: %w", target.NoBukti, domain.ErrNotFound)
		}
		return list, nil
	}
	if target.RecordID == "" {
		return nil, domain.Invalid("target.recordId", "requerido")
	}
	m, err := tx.Adjustments().GetByID(target.RecordID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("penyesuaian %s: %w", target.RecordID, domain.ErrNotFound)
	}
	return []*entity.StockMovement{m}, nil
}

// applyEdit ajusta el stock por newDelta - oldDelta en cada línea editada y recalcula After.
// No reaplica desde cero: los movimientos posteriores sobre el mismo producto se conservan.
func (e *AdjustmentEngine) applyEdit(tx repository.Tx, lg *ledger, movements []*entity.StockMovement, change entity.EditChange, now time.Time) error {
	byID := make(map[string]*entity.StockMovement, len(movements))
	for _, m := range movements {
		byID[m.ID] = m
	}
	edited := make(map[string]bool)
	for _, ed := range change.Adjustments {
		m, ok := byID[ed.RecordID]
		if !ok {
			return domain.Invalid("dataBaru.penyesuaian", "la línea "+ed.RecordID+" no pertenece al registro")
		}
		if edited[ed.RecordID] {
			return fmt.Errorf("%w: línea %s", domain.ErrDuplicateProduct, ed.RecordID)
		}
		edited[ed.RecordID] = true
		if ed.Delta == 0 {
			return domain.Invalid("dataBaru.penyesuaian", "la cantidad no puede ser cero")
		}
		if _, err := domaininv.MulFactor(ed.Delta, 1); err != nil {
			return err
		}
		diff, err := domaininv.AddQuantity(ed.Delta, -m.Delta)
		if err != nil {
			return err
		}
		if _, _, err := lg.apply(m.ProductID, m.ApotikID, diff); err != nil {
			return err
		}
		after, err := domaininv.AddQuantity(m.Before, ed.Delta)
		if err != nil {
			return err
		}
		m.Delta = ed.Delta
		m.After = after
		m.UnitID = ""
		m.UnitQty = ed.Delta
		if ed.Note != nil {
			m.Note = *ed.Note
		}
	}
	for _, m := range movements {
		if change.Note != nil {
			m.Note = *change.Note
			edited[m.ID] = true
		}
		if !edited[m.ID] {
			continue
		}
		m.UpdatedAt = now
		if err := tx.Adjustments().Update(m); err != nil {
			return err
		}
	}
	return nil
}

// applyDelete revierte el efecto de cada línea (-delta) y la elimina.
func (e *AdjustmentEngine) applyDelete(tx repository.Tx, lg *ledger, movements []*entity.StockMovement) error {
	for _, m := range movements {
		if _, _, err := lg.apply(m.ProductID, m.ApotikID, -m.Delta); err != nil {
			return err
		}
		if err := tx.Adjustments().Delete(m.ID); err != nil {
			return err
		}
	}
	return nil
}
