package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
)

func approve(t *testing.T, f *fixture, p *entity.Pengajuan) {
	t.Helper()
	ctx := inventory.WithOperator(context.Background(), "owner@apotik.id")
	got, err := f.gate.Decide(ctx, p.ID, true, "ok", p.Version)
	require.NoError(t, err)
	assert.Equal(t, entity.PengajuanStatusApproved, got.Status)
	assert.Equal(t, "owner@apotik.id", got.DecidedBy)
}

func TestApproval_EditarPenyesuaianAplicaLaDiferencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: -10}}})
	require.NoError(t, err)
	// Otro movimiento posterior sobre el mismo producto.
	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: 5}}})
	require.NoError(t, err)
	assert.Equal(t, int64(45), f.qty(t, "PRD-ASPIRIN", "APT01"))

	m := res.Movements[0]
	p, err := f.gate.Submit(ctx, inventory.SubmitInput{
		Target: entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: m.ID},
		Change: entity.EditChange{Adjustments: []entity.AdjustmentEdit{{RecordID: m.ID, Delta: -4}}},
		Alasan: "salah input",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PengajuanStatusPending, p.Status)

	_, err = f.gate.ApplyApproved(ctx, p.ID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidPengajuanState, "sin aprobar no se aplica")

	approve(t, f, p)
	applied, err := f.gate.ApplyApproved(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.PengajuanStatusApplied, applied.Status)
	assert.Equal(t, int64(51), f.qty(t, "PRD-ASPIRIN", "APT01"), "45 + (-4 - -10)")

	batch, err := f.adjustments.GetBatch(ctx, m.NoBukti)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), batch[0].Delta)
	assert.Equal(t, int64(46), batch[0].After)

	_, err = f.gate.ApplyApproved(ctx, p.ID, false)
	assert.ErrorIs(t, err, domain.ErrAlreadyApplied)
	assert.Equal(t, int64(51), f.qty(t, "PRD-ASPIRIN", "APT01"), "la segunda aplicación no muta el stock")
}

func TestApproval_HapusLoteCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{
		{ProductID: "PRD-ASPIRIN", Qty: 10},
		{ProductID: "PRD-PCT", Qty: -5},
	}})
	require.NoError(t, err)

	p, err := f.gate.Submit(ctx, inventory.SubmitInput{
		Target: entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, NoBukti: res.NoBukti, IsGlobal: true},
		Change: entity.DeleteChange{},
		Alasan: "dokumen ganda",
	})
	require.NoError(t, err)

	_, err = f.gate.Submit(ctx, inventory.SubmitInput{
		Target: entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: res.Movements[1].ID},
		Change: entity.DeleteChange{},
		Alasan: "otra",
	})
	assert.ErrorIs(t, err, domain.ErrActivePengajuan, "una línea del lote ya tiene pengajuan activa")

	approve(t, f, p)
	_, err = f.gate.ApplyApproved(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(50), f.qty(t, "PRD-ASPIRIN", "APT01"))
	assert.Equal(t, int64(30), f.qty(t, "PRD-PCT", "APT01"))

	_, err = f.adjustments.GetBatch(ctx, res.NoBukti)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApproval_DitolakNoSeApruebaYSePuedeReenviar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-PCT", Qty: 1}}})
	require.NoError(t, err)
	target := entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: res.Movements[0].ID}

	p, err := f.gate.Submit(ctx, inventory.SubmitInput{Target: target, Change: entity.DeleteChange{}, Alasan: "x"})
	require.NoError(t, err)
	rejected, err := f.gate.Decide(ctx, p.ID, false, "tidak valid", 0)
	require.NoError(t, err)
	assert.Equal(t, entity.PengajuanStatusRejected, rejected.Status)

	_, err = f.gate.Decide(ctx, p.ID, true, "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPengajuanState)
	_, err = f.gate.ApplyApproved(ctx, p.ID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidPengajuanState)

	again, err := f.gate.Submit(ctx, inventory.SubmitInput{Target: target, Change: entity.DeleteChange{}, Alasan: "x lagi"})
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, again.ID)

	pending, err := f.gate.List(ctx, repository.PengajuanFilter{Status: entity.PengajuanStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestApproval_EdicionConLineasRepetidasSeRechazaAlEnviar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: -10}}})
	require.NoError(t, err)
	m := res.Movements[0]
	target := entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: m.ID}

	_, err = f.gate.Submit(ctx, inventory.SubmitInput{
		Target: target,
		Change: entity.EditChange{Adjustments: []entity.AdjustmentEdit{{RecordID: m.ID, Delta: -4}, {RecordID: m.ID, Delta: -3}}},
		Alasan: "x",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)

	trf, err := f.transfers.CreateAndSend(ctx, aspirinTransfer(20))
	require.NoError(t, err)
	rc, err := f.transfers.Receive(ctx, inventory.ReceiveInput{TransferID: trf.ID, Lines: []inventory.ReceiveLine{{ProductID: "PRD-ASPIRIN", QtyReceived: 15}}})
	require.NoError(t, err)
	_, err = f.gate.Submit(ctx, inventory.SubmitInput{
		Target: entity.PengajuanTarget{Kind: entity.TargetTerimaTransfer, RecordID: rc.ID},
		Change: entity.EditChange{Receipt: []entity.ReceiptLineEdit{{ProductID: "PRD-ASPIRIN", QtyReceived: 16}, {ProductID: "PRD-ASPIRIN", QtyReceived: 17}}},
		Alasan: "x",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)

	pending, err := f.gate.List(ctx, repository.PengajuanFilter{})
	require.NoError(t, err)
	assert.Empty(t, pending, "nada queda activo bloqueando los registros")

	ok, err := f.gate.Submit(ctx, inventory.SubmitInput{
		Target: target,
		Change: entity.EditChange{Adjustments: []entity.AdjustmentEdit{{RecordID: m.ID, Delta: -4}}},
		Alasan: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PengajuanStatusPending, ok.Status)
}

func TestApproval_DisetujuiSePuedeRechazarAntesDeAplicar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: -60}}, ConfirmNegative: true})
	require.NoError(t, err)
	target := entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: res.Movements[0].ID}

	p, err := f.gate.Submit(ctx, inventory.SubmitInput{
		Target: target,
		Change: entity.EditChange{Adjustments: []entity.AdjustmentEdit{{RecordID: res.Movements[0].ID, Delta: -70}}},
		Alasan: "x",
	})
	require.NoError(t, err)
	approve(t, f, p)
	approved, err := f.gate.Get(ctx, p.ID)
	require.NoError(t, err)

	_, err = f.gate.Decide(ctx, p.ID, true, "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPengajuanState, "no se aprueba dos veces")

	rejected, err := f.gate.Decide(ctx, p.ID, false, "no se aplicará", approved.Version)
	require.NoError(t, err)
	assert.Equal(t, entity.PengajuanStatusRejected, rejected.Status)
	assert.Equal(t, int64(-10), f.qty(t, "PRD-ASPIRIN", "APT01"), "rechazar no toca el stock")

	_, err = f.gate.ApplyApproved(ctx, p.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidPengajuanState)

	_, err = f.gate.Submit(ctx, inventory.SubmitInput{Target: target, Change: entity.DeleteChange{}, Alasan: "otra vez"})
	require.NoError(t, err, "el registro queda libre para una nueva pengajuan")
}

func TestApproval_SubmitValidaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gate.Submit(ctx, inventory.SubmitInput{Target: entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: "nope"}, Change: entity.DeleteChange{}, Alasan: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.gate.Submit(ctx, inventory.SubmitInput{Target: entity.PengajuanTarget{Kind: "penjualan", RecordID: "x"}, Change: entity.DeleteChange{}, Alasan: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.gate.Submit(ctx, inventory.SubmitInput{Target: entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: "x"}, Alasan: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin tipo de cambio")

	_, err = f.gate.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApproval_EditarYHapusTerimaTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setQty(t, "PRD-ASPIRIN", "APT01", 100)

	trf, err := f.transfers.CreateAndSend(ctx, aspirinTransfer(20))
	require.NoError(t, err)
	rc, err := f.transfers.Receive(ctx, inventory.ReceiveInput{TransferID: trf.ID, Lines: []inventory.ReceiveLine{{ProductID: "PRD-ASPIRIN", QtyReceived: 15}}})
	require.NoError(t, err)
	// Venta posterior en destino.
	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT02", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: -3}}})
	require.NoError(t, err)
	assert.Equal(t, int64(12), f.qty(t, "PRD-ASPIRIN", "APT02"))

	target := entity.PengajuanTarget{Kind: entity.TargetTerimaTransfer, RecordID: rc.ID, NoBukti: rc.NoTerima}
	_, err = f.gate.Submit(ctx, inventory.SubmitInput{
		Target: target,
		Change: entity.EditChange{Receipt: []entity.ReceiptLineEdit{{ProductID: "PRD-ASPIRIN", QtyReceived: 25}}},
		Alasan: "x",
	})
	assert.ErrorIs(t, err, domain.ErrOverReceipt, "la edición tampoco puede exceder lo transferido")

	edit, err := f.gate.Submit(ctx, inventory.SubmitInput{
		Target: target,
		Change: entity.EditChange{Receipt: []entity.ReceiptLineEdit{{ProductID: "PRD-ASPIRIN", QtyReceived: 20}}},
		Alasan: "salah hitung",
	})
	require.NoError(t, err)
	approve(t, f, edit)
	_, err = f.gate.ApplyApproved(ctx, edit.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(17), f.qty(t, "PRD-ASPIRIN", "APT02"), "12 + (20 - 15)")

	got, err := f.transfers.GetReceipt(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Items[0].QtyReceived)

	del, err := f.gate.Submit(ctx, inventory.SubmitInput{Target: target, Change: entity.DeleteChange{}, Alasan: "batal"})
	require.NoError(t, err)
	approve(t, f, del)

	f.setQty(t, "PRD-ASPIRIN", "APT02", 5)
	_, err = f.gate.ApplyApproved(ctx, del.ID, false)
	require.ErrorIs(t, err, domain.ErrNegativeStockConfirmation, "revertir 20 deja -15")
	assert.Equal(t, int64(5), f.qty(t, "PRD-ASPIRIN", "APT02"))

	_, err = f.gate.ApplyApproved(ctx, del.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(-15), f.qty(t, "PRD-ASPIRIN", "APT02"))

	back, err := f.transfers.Get(ctx, trf.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDikirim, back.Status)
	pending, err := f.transfers.ListPending(ctx, "APT02")
	require.NoError(t, err)
	assert.Len(t, pending, 1, "vuelve a la lista de pendientes")

	_, err = f.transfers.GetReceipt(ctx, rc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
