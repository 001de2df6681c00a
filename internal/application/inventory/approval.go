package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Apotik-api/internal/domain/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

// SubmitInput solicitud de edición o eliminación de un registro histórico.
type SubmitInput struct {
	Target entity.PengajuanTarget
	Change entity.Change
	Alasan string
}

// ApprovalGate exige una pengajuan aprobada antes de editar o eliminar penyesuaian
// y terima transfer ya registrados.
type ApprovalGate struct {
	tx          TxRunner
	clock       Clock
	adjustments *AdjustmentEngine
	transfers   *TransferEngine
}

// NewApprovalGate construye la compuerta sobre los motores que delega.
func NewApprovalGate(tx TxRunner, clock Clock, adjustments *AdjustmentEngine, transfers *TransferEngine) *ApprovalGate {
	return &ApprovalGate{tx: tx, clock: clock, adjustments: adjustments, transfers: transfers}
}

// Submit crea la pengajuan en Menunggu Persetujuan. Falla si el registro no existe o ya
// tiene una pengajuan activa.
func (g *ApprovalGate) Submit(ctx context.Context, in SubmitInput) (*entity.Pengajuan, error) {
	if in.Change == nil {
		return nil, domain.Invalid("jenisPengajuan", "requerido")
	}
	if strings.TrimSpace(in.Alasan) == "" {
		return nil, domain.Invalid("alasan", "requerida")
	}
	now := g.clock.now()
	var out *entity.Pengajuan
	err := g.tx.Run(ctx, func(tx repository.Tx) error {
		affected, err := affectedRecords(tx, in.Target)
		if err != nil {
			return err
		}
		if err := validateChange(tx, in.Target, in.Change, affected); err != nil {
			return err
		}
		active, err := tx.Pengajuan().List(repository.PengajuanFilter{Kind: in.Target.Kind})
		if err != nil {
			return err
		}
		for _, p := range active {
			if !p.Active() {
				continue
			}
			other, err := affectedRecords(tx, p.Target)
			if err != nil {
				// El registro de una pengajuan activa pudo desaparecer; se compara por clave.
				other = []string{p.Target.RecordID}
			}
			if overlaps(affected, other) {
				return fmt.Errorf("%w: %s", domain.ErrActivePengajuan, p.ID)
			}
		}
		if in.Target.IsGlobal {
			in.Target.RecordID = ""
		}
		p := &entity.Pengajuan{
			ID:          uuid.New().String(),
			Target:      in.Target,
			Change:      in.Change,
			Alasan:      in.Alasan,
			Status:      entity.PengajuanStatusPending,
			RequestedBy: OperatorFrom(ctx),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Pengajuan().Create(p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Decide es la acción del aprobador: Menunggu Persetujuan -> Disetujui | Ditolak.
// Una pengajuan Disetujui aún no aplicada puede pasar a Ditolak para liberar el registro.
func (g *ApprovalGate) Decide(ctx context.Context, id string, approve bool, note string, expectedVersion int64) (*entity.Pengajuan, error) {
	now := g.clock.now()
	var out *entity.Pengajuan
	err := g.tx.Run(ctx, func(tx repository.Tx) error {
		p, err := getPengajuan(tx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckVersion(expectedVersion, p.Version); err != nil {
			return err
		}
		switch {
		case p.Status == entity.PengajuanStatusPending:
		case p.Status == entity.PengajuanStatusApproved && !approve:
		default:
			return fmt.Errorf("%w: %s está %s", domain.ErrInvalidPengajuanState, p.ID, p.Status)
		}
		p.Status = entity.PengajuanStatusRejected
		if approve {
			p.Status = entity.PengajuanStatusApproved
		}
		p.DecidedBy = OperatorFrom(ctx)
		p.DecisionNote = note
		p.DecidedAt = &now
		p.UpdatedAt = now
		if err := tx.Pengajuan().Update(p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyApproved ejecuta el cambio aprobado y marca la pengajuan Selesai en la misma unidad
// de trabajo. Una segunda llamada falla con ErrAlreadyApplied sin tocar el stock.
func (g *ApprovalGate) ApplyApproved(ctx context.Context, id string, confirmNegative bool) (*entity.Pengajuan, error) {
	now := g.clock.now()
	var out *entity.Pengajuan
	err := g.tx.Run(ctx, func(tx repository.Tx) error {
		p, err := getPengajuan(tx, id)
		if err != nil {
			return err
		}
		switch p.Status {
		case entity.PengajuanStatusApplied:
			return fmt.Errorf("%w: %s", domain.ErrAlreadyApplied, p.ID)
		case entity.PengajuanStatusApproved:
		default:
			return fmt.Errorf("%w: %s está %s", domain.ErrInvalidPengajuanState, p.ID, p.Status)
		}

		lg := newLedger(tx.Products())
		switch p.Target.Kind {
		case entity.TargetPenyesuaian:
			movements, err := targetMovements(tx, p.Target)
			if err != nil {
				return err
			}
			switch c := p.Change.(type) {
			case entity.EditChange:
				err = g.adjustments.applyEdit(tx, lg, movements, c, now)
			case entity.DeleteChange:
				err = g.adjustments.applyDelete(tx, lg, movements)
			}
			if err != nil {
				return err
			}
		case entity.TargetTerimaTransfer:
			r, err := getReceipt(tx, p.Target.RecordID)
			if err != nil {
				return err
			}
			switch c := p.Change.(type) {
			case entity.EditChange:
				err = g.transfers.applyReceiptEdit(tx, lg, r, c, now)
			case entity.DeleteChange:
				err = g.transfers.applyReceiptDelete(tx, lg, r, now)
			}
			if err != nil {
				return err
			}
		default:
			return domain.Invalid("target.tipe", "desconocido: "+p.Target.Kind)
		}
		if err := lg.confirm(confirmNegative); err != nil {
			return err
		}
		if err := lg.flush(now); err != nil {
			return err
		}

		p.Status = entity.PengajuanStatusApplied
		p.AppliedAt = &now
		p.UpdatedAt = now
		if err := tx.Pengajuan().Update(p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get una pengajuan por ID.
func (g *ApprovalGate) Get(ctx context.Context, id string) (*entity.Pengajuan, error) {
	var out *entity.Pengajuan
	err := g.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = getPengajuan(tx, id)
		return err
	})
	return out, err
}

// List pengajuan filtradas, más recientes primero.
func (g *ApprovalGate) List(ctx context.Context, filter repository.PengajuanFilter) ([]*entity.Pengajuan, error) {
	var out []*entity.Pengajuan
	err := g.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Pengajuan().List(filter)
		return err
	})
	return out, err
}

// affectedRecords IDs de los registros que toca el target; verifica que existan.
func affectedRecords(tx repository.Tx, target entity.PengajuanTarget) ([]string, error) {
	switch target.Kind {
	case entity.TargetPenyesuaian:
		movements, err := targetMovements(tx, target)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(movements))
		for _, m := range movements {
			ids = append(ids, m.ID)
		}
		return ids, nil
	case entity.TargetTerimaTransfer:
		if target.IsGlobal {
			return nil, domain.Invalid("target.isGlobal", "no aplica a terima transfer")
		}
		if target.RecordID == "" {
			return nil, domain.Invalid("target.recordId", "requerido")
		}
		if _, err := getReceipt(tx, target.RecordID); err != nil {
			return nil, err
		}
		return []string{target.RecordID}, nil
	default:
		return nil, domain.Invalid("target.tipe", "debe ser penyesuaian o terimaTransfer")
	}
}

// validateChange verifica que una EditChange tenga valores para el tipo de registro.
func validateChange(tx repository.Tx, target entity.PengajuanTarget, change entity.Change, affected []string) error {
	edit, ok := change.(entity.EditChange)
	if !ok {
		return nil
	}
	switch target.Kind {
	case entity.TargetPenyesuaian:
		if len(edit.Adjustments) == 0 && edit.Note == nil {
			return domain.Invalid("dataBaru", "sin cambios propuestos")
		}
		seen := make(map[string]bool, len(edit.Adjustments))
		for _, ed := range edit.Adjustments {
			if !contains(affected, ed.RecordID) {
				return domain.Invalid("dataBaru.penyesuaian", "la línea "+ed.RecordID+" no pertenece al registro")
			}
			if seen[ed.RecordID] {
				return fmt.Errorf("%w: línea %s", domain.ErrDuplicateProduct, ed.RecordID)
			}
			seen[ed.RecordID] = true
			if ed.Delta == 0 {
				return domain.Invalid("dataBaru.penyesuaian", "la cantidad no puede ser cero")
			}
			if _, err := domaininv.MulFactor(ed.Delta, 1); err != nil {
				return err
			}
		}
	case entity.TargetTerimaTransfer:
		if len(edit.Receipt) == 0 && edit.Note == nil {
			return domain.Invalid("dataBaru", "sin cambios propuestos")
		}
		r, err := getReceipt(tx, target.RecordID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(edit.Receipt))
		for _, ed := range edit.Receipt {
			if seen[ed.ProductID] {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, ed.ProductID)
			}
			seen[ed.ProductID] = true
			found := false
			for _, it := range r.Items {
				if it.ProductID != ed.ProductID {
					continue
				}
				found = true
				if _, err := receivedBase(it.ProductID, ed.QtyReceived, it.QtyTransferred, it.Factor); err != nil {
					return err
				}
			}
			if !found {
				return domain.Invalid("dataBaru.terimaTransfer", "el producto "+ed.ProductID+" no está en la recepción")
			}
		}
	}
	return nil
}

func getPengajuan(tx repository.Tx, id string) (*entity.Pengajuan, error) {
	p, err := tx.Pengajuan().GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("pengajuan %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
