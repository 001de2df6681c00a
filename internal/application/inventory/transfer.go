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

// TransferLine cantidad a transferir en la unidad UnitID.
type TransferLine struct {
	ProductID string
	UnitID    string
	Qty       int64
}

// TransferInput datos de una transferencia nueva.
type TransferInput struct {
	FromApotikID    string
	ToApotikID      string
	Date            time.Time
	Note            string
	Lines           []TransferLine
	ConfirmNegative bool // solo aplica a CreateAndSend
}

// SendOptions opciones del envío y de la cancelación.
type SendOptions struct {
	ConfirmNegative bool
	ExpectedVersion int64
}

// ReceiveLine cantidad recibida de un producto, en la unidad de la transferencia.
type ReceiveLine struct {
	ProductID   string
	QtyReceived int64
}

// ReceiveInput datos de la terima transfer.
type ReceiveInput struct {
	TransferID      string
	Date            time.Time
	Note            string
	Lines           []ReceiveLine
	ExpectedVersion int64
	// ConfirmNegative acepta acreditar sobre un stock destino que sigue negativo.
	ConfirmNegative bool
}

// TransferEngine mueve stock entre apotik en dos fases: envío (descuenta origen) y
// recepción (acredita destino).
type TransferEngine struct {
	tx    TxRunner
	clock Clock
}

// NewTransferEngine construye el motor. clock puede ser nil.
func NewTransferEngine(tx TxRunner, clock Clock) *TransferEngine {
	return &TransferEngine{tx: tx, clock: clock}
}

// CreateDraft registra la transferencia en Draft sin tocar stock.
func (e *TransferEngine) CreateDraft(ctx context.Context, in TransferInput) (*entity.Transfer, error) {
	if err := validateTransferInput(in); err != nil {
		return nil, err
	}
	now := e.clock.now()
	var out *entity.Transfer
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := e.createDraft(ctx, tx, in, now)
		out = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAndSend crea y envía en la misma unidad de trabajo.
func (e *TransferEngine) CreateAndSend(ctx context.Context, in TransferInput) (*entity.Transfer, error) {
	if err := validateTransferInput(in); err != nil {
		return nil, err
	}
	now := e.clock.now()
	var out *entity.Transfer
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := e.createDraft(ctx, tx, in, now)
		if err != nil {
			return err
		}
		lg := newLedger(tx.Products())
		if err := e.send(tx, lg, t, in.ConfirmNegative, now); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Send pasa Draft a Dikirim y descuenta el stock de origen. Reenviar una transferencia ya
// Dikirim no hace nada (no descuenta dos veces).
func (e *TransferEngine) Send(ctx context.Context, transferID string, opts SendOptions) (*entity.Transfer, error) {
	now := e.clock.now()
	var out *entity.Transfer
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := getTransfer(tx, transferID)
		if err != nil {
			return err
		}
		out = t
		if t.Status == entity.TransferStatusDikirim {
			return nil
		}
		if err := domain.CheckVersion(opts.ExpectedVersion, t.Version); err != nil {
			return err
		}
		if t.Status != entity.TransferStatusDraft {
			return fmt.Errorf("%w: %s está %s", domain.ErrInvalidTransferState, t.NoTransfer, t.Status)
		}
		if _, err := activeApotik(tx, "from_apotik_id", t.FromApotikID); err != nil {
			return err
		}
		if _, err := activeApotik(tx, "to_apotik_id", t.ToApotikID); err != nil {
			return err
		}
		lg := newLedger(tx.Products())
		return e.send(tx, lg, t, opts.ConfirmNegative, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Receive registra la terima transfer: acredita destino con recibido × factor y pasa a Diterima.
// Cada línea de la transferencia debe aparecer exactamente una vez.
func (e *TransferEngine) Receive(ctx context.Context, in ReceiveInput) (*entity.Receipt, error) {
	now := e.clock.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	operator := OperatorFrom(ctx)
	var out *entity.Receipt
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := getTransfer(tx, in.TransferID)
		if err != nil {
			return err
		}
		if err := domain.CheckVersion(in.ExpectedVersion, t.Version); err != nil {
			return err
		}
		if t.Status != entity.TransferStatusDikirim {
			return fmt.Errorf("%w: %s está %s", domain.ErrInvalidTransferState, t.NoTransfer, t.Status)
		}
		existing, err := tx.Receipts().GetByTransferID(t.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s ya fue recibida en %s", domain.ErrInvalidTransferState, t.NoTransfer, existing.NoTerima)
		}

		received := make(map[string]int64, len(in.Lines))
		for _, l := range in.Lines {
			if _, ok := t.FindItem(l.ProductID); !ok {
				return domain.Invalid("lines", "el producto "+l.ProductID+" no está en la transferencia")
			}
			if _, dup := received[l.ProductID]; dup {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, l.ProductID)
			}
			received[l.ProductID] = l.QtyReceived
		}

		lg := newLedger(tx.Products())
		items := make([]entity.ReceiptItem, 0, len(t.Items))
		for _, it := range t.Items {
			qty, ok := received[it.ProductID]
			if !ok {
				return domain.Invalid("lines", "falta la cantidad recibida de "+it.ProductID)
			}
			factor := it.BaseQty / it.Qty
			base, err := receivedBase(it.ProductID, qty, it.Qty, factor)
			if err != nil {
				return err
			}
			if _, _, err := lg.apply(it.ProductID, t.ToApotikID, base); err != nil {
				return err
			}
			items = append(items, entity.ReceiptItem{
				ProductID:       it.ProductID,
				UnitID:          it.UnitID,
				Factor:          factor,
				QtyTransferred:  it.Qty,
				QtyReceived:     qty,
				BaseQtyReceived: base,
			})
		}

		if err := lg.confirm(in.ConfirmNegative); err != nil {
			return err
		}

		numbers, err := tx.Receipts().DocumentNumbers()
		if err != nil {
			return err
		}
		r := &entity.Receipt{
			ID:           uuid.New().String(),
			NoTerima:     domaininv.NextDocumentNumber(entity.PrefixReceipt, now, numbers),
			TransferID:   t.ID,
			NoTransfer:   t.NoTransfer,
			Date:         date,
			FromApotikID: t.FromApotikID,
			ToApotikID:   t.ToApotikID,
			Items:        items,
			Note:         in.Note,
			Operator:     operator,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Receipts().Create(r); err != nil {
			return err
		}
		t.Status = entity.TransferStatusDiterima
		t.ReceivedAt = &now
		t.UpdatedAt = now
		if err := tx.Transfers().Update(t); err != nil {
			return err
		}
		if err := lg.flush(now); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel pasa Draft|Dikirim a Dibatalkan. Cancelar una Dikirim devuelve el stock al origen.
func (e *TransferEngine) Cancel(ctx context.Context, transferID string, opts SendOptions) (*entity.Transfer, error) {
	now := e.clock.now()
	var out *entity.Transfer
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := getTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if err := domain.CheckVersion(opts.ExpectedVersion, t.Version); err != nil {
			return err
		}
		lg := newLedger(tx.Products())
		switch t.Status {
		case entity.TransferStatusDraft:
		case entity.TransferStatusDikirim:
			for _, it := range t.Items {
				if _, _, err := lg.apply(it.ProductID, t.FromApotikID, it.BaseQty); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: %s está %s", domain.ErrInvalidTransferState, t.NoTransfer, t.Status)
		}
		if err := lg.confirm(opts.ConfirmNegative); err != nil {
			return err
		}
		t.Status = entity.TransferStatusDibatalkan
		t.CancelledAt = &now
		t.UpdatedAt = now
		if err := tx.Transfers().Update(t); err != nil {
			return err
		}
		out = t
		return lg.flush(now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListPending transferencias Dikirim que esperan recepción en la apotik destino.
func (e *TransferEngine) ListPending(ctx context.Context, toApotikID string) ([]*entity.Transfer, error) {
	return e.List(ctx, repository.TransferFilter{ToApotikID: toApotikID, Status: entity.TransferStatusDikirim})
}

// List transferencias filtradas, más recientes primero.
func (e *TransferEngine) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Transfers().List(filter)
		return err
	})
	return out, err
}

// Get una transferencia por ID.
func (e *TransferEngine) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = getTransfer(tx, id)
		return err
	})
	return out, err
}

// GetReceipt una terima transfer por ID.
func (e *TransferEngine) GetReceipt(ctx context.Context, id string) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = getReceipt(tx, id)
		return err
	})
	return out, err
}

// ListReceipts recepciones de una apotik destino (todas si está vacío).
func (e *TransferEngine) ListReceipts(ctx context.Context, toApotikID string) ([]*entity.Receipt, error) {
	var out []*entity.Receipt
	err := e.tx.Run(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.Receipts().List(toApotikID)
		return err
	})
	return out, err
}

func validateTransferInput(in TransferInput) error {
	if in.FromApotikID == "" {
		return domain.Invalid("from_apotik_id", "requerido")
	}
	if in.ToApotikID == "" {
		return domain.Invalid("to_apotik_id", "requerido")
	}
	if in.FromApotikID == in.ToApotikID {
		return domain.Invalid("to_apotik_id", "debe ser distinta de la apotik de origen")
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("lines", "se requiere al menos una línea")
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if l.ProductID == "" {
			return domain.Invalid("lines", "producto requerido")
		}
		if l.Qty <= 0 {
			return domain.Invalid("lines", "la cantidad de "+l.ProductID+" debe ser mayor a cero")
		}
		if seen[l.ProductID] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, l.ProductID)
		}
		seen[l.ProductID] = true
	}
	return nil
}

func (e *TransferEngine) createDraft(ctx context.Context, tx repository.Tx, in TransferInput, now time.Time) (*entity.Transfer, error) {
	if _, err := activeApotik(tx, "from_apotik_id", in.FromApotikID); err != nil {
		return nil, err
	}
	if _, err := activeApotik(tx, "to_apotik_id", in.ToApotikID); err != nil {
		return nil, err
	}
	items := make([]entity.TransferItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		p, err := tx.Products().GetByID(l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.Invalid("product_id", "no existe: "+l.ProductID)
		}
		base, err := domaininv.ConvertToBaseUnits(p, l.UnitID, l.Qty)
		if err != nil {
			return nil, err
		}
		items = append(items, entity.TransferItem{ProductID: l.ProductID, UnitID: l.UnitID, Qty: l.Qty, BaseQty: base})
	}
	numbers, err := tx.Transfers().DocumentNumbers()
	if err != nil {
		return nil, err
	}
	date := in.Date
	if date.IsZero() {
		date = now
	}
	t := &entity.Transfer{
		ID:           uuid.New().String(),
		NoTransfer:   domaininv.NextDocumentNumber(entity.PrefixTransfer, now, numbers),
		Date:         date,
		FromApotikID: in.FromApotikID,
		ToApotikID:   in.ToApotikID,
		Items:        items,
		Status:       entity.TransferStatusDraft,
		Note:         in.Note,
		Operator:     OperatorFrom(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Transfers().Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

// send descuenta BaseQty de cada línea en el origen y marca Dikirim.
func (e *TransferEngine) send(tx repository.Tx, lg *ledger, t *entity.Transfer, confirm bool, now time.Time) error {
	for _, it := range t.Items {
		if _, _, err := lg.apply(it.ProductID, t.FromApotikID, -it.BaseQty); err != nil {
			return err
		}
	}
	if err := lg.confirm(confirm); err != nil {
		return err
	}
	t.Status = entity.TransferStatusDikirim
	t.SentAt = &now
	t.UpdatedAt = now
	if err := tx.Transfers().Update(t); err != nil {
		return err
	}
	return lg.flush(now)
}

// applyReceiptEdit acredita (nuevo - anterior) × factor por línea editada.
func (e *TransferEngine) applyReceiptEdit(tx repository.Tx, lg *ledger, r *entity.Receipt, change entity.EditChange, now time.Time) error {
	seen := make(map[string]bool, len(change.Receipt))
	for _, ed := range change.Receipt {
		idx := -1
		for i := range r.Items {
			if r.Items[i].ProductID == ed.ProductID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domain.Invalid("dataBaru.terimaTransfer", "el producto "+ed.ProductID+" no está en la recepción")
		}
		if seen[ed.ProductID] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, ed.ProductID)
		}
		seen[ed.ProductID] = true
		it := &r.Items[idx]
		newBase, err := receivedBase(it.ProductID, ed.QtyReceived, it.QtyTransferred, it.Factor)
		if err != nil {
			return err
		}
		if _, _, err := lg.apply(it.ProductID, r.ToApotikID, newBase-it.BaseQtyReceived); err != nil {
			return err
		}
		it.QtyReceived = ed.QtyReceived
		it.BaseQtyReceived = newBase
	}
	if change.Note != nil {
		r.Note = *change.Note
	}
	r.UpdatedAt = now
	return tx.Receipts().Update(r)
}

// applyReceiptDelete revierte todo lo acreditado, elimina la recepción y devuelve la transferencia a Dikirim.
func (e *TransferEngine) applyReceiptDelete(tx repository.Tx, lg *ledger, r *entity.Receipt, now time.Time) error {
	for _, it := range r.Items {
		if _, _, err := lg.apply(it.ProductID, r.ToApotikID, -it.BaseQtyReceived); err != nil {
			return err
		}
	}
	if err := tx.Receipts().Delete(r.ID); err != nil {
		return err
	}
	t, err := getTransfer(tx, r.TransferID)
	if err != nil {
		return err
	}
	t.Status = entity.TransferStatusDikirim
	t.ReceivedAt = nil
	t.UpdatedAt = now
	return tx.Transfers().Update(t)
}

// receivedBase valida 0 < qty <= transferido y convierte con el factor de la línea.
func receivedBase(productID string, qty, transferred, factor int64) (int64, error) {
	if qty <= 0 {
		return 0, domain.Invalid("qty_received", "debe ser mayor a cero para "+productID)
	}
	if qty > transferred {
		return 0, fmt.Errorf("%w: %s recibido %d de %d", domain.ErrOverReceipt, productID, qty, transferred)
	}
	return domaininv.MulFactor(qty, factor)
}

func getTransfer(tx repository.Tx, id string) (*entity.Transfer, error) {
	t, err := tx.Transfers().GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("transferencia %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func getReceipt(tx repository.Tx, id string) (*entity.Receipt, error) {
	r, err := tx.Receipts().GetByID(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("terima transfer %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}
