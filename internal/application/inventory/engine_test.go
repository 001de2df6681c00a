package inventory_test

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/memory"
)

var fixedNow = time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fixture struct {
	store       *memory.Store
	ledger      *inventory.StockLedger
	adjustments *inventory.AdjustmentEngine
	transfers   *inventory.TransferEngine
	opnames     *inventory.OpnameEngine
	gate        *inventory.ApprovalGate
}

// newFixture APT01 con 50 de PRD-ASPIRIN (strip = 10 pcs), APT02 vacía, APT03 inactiva.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Run(context.Background(), func(tx repository.Tx) error {
		for _, a := range []*entity.Apotik{
			{ID: "APT01", Code: "APT01", Name: "Apotik Pusat", Active: true},
			{ID: "APT02", Code: "APT02", Name: "Apotik Cabang", Active: true},
			{ID: "APT03", Code: "APT03", Name: "Apotik Tutup", Active: false},
		} {
			if err := tx.Apotiks().Create(a); err != nil {
				return err
			}
		}
		for _, p := range []*entity.Product{
			{
				ID: "PRD-ASPIRIN", Code: "PRD-ASPIRIN", Name: "Aspirin 500mg", BaseUnit: "pcs",
				PurchasePrice: decimal.RequireFromString("1250.5"),
				Units:         []entity.Unit{{ID: "strip", Name: "Strip", Factor: 10}},
				StokPerApotik: map[string]int64{"APT01": 50},
				Active:        true,
			},
			{ID: "PRD-PCT", Code: "PRD-PCT", Name: "Paracetamol", BaseUnit: "pcs", StokAwal: 30, Active: true},
		} {
			if err := tx.Products().Create(p); err != nil {
				return err
			}
		}
		return nil
	}))
	clock := inventory.Clock(fixedClock)
	adj := inventory.NewAdjustmentEngine(store, clock)
	trf := inventory.NewTransferEngine(store, clock)
	return &fixture{
		store:       store,
		ledger:      inventory.NewStockLedger(store),
		adjustments: adj,
		transfers:   trf,
		opnames:     inventory.NewOpnameEngine(store, clock),
		gate:        inventory.NewApprovalGate(store, clock, adj, trf),
	}
}

func (f *fixture) qty(t *testing.T, productID, apotikID string) int64 {
	t.Helper()
	q, err := f.ledger.Quantity(context.Background(), productID, apotikID)
	require.NoError(t, err)
	return q
}

func (f *fixture) setQty(t *testing.T, productID, apotikID string, qty int64) {
	t.Helper()
	require.NoError(t, f.store.Run(context.Background(), func(tx repository.Tx) error {
		p, err := tx.Products().GetByID(productID)
		if err != nil {
			return err
		}
		if p.StokPerApotik == nil {
			p.StokPerApotik = map[string]int64{}
		}
		p.StokPerApotik[apotikID] = qty
		return tx.Products().Update(p)
	}))
}

var adjPattern = regexp.MustCompile(`^ADJ-\d{6}-\d{4}$`)

func TestAdjustment_ReduccionSinNegativo(t *testing.T) {
	f := newFixture(t)
	ctx := inventory.WithOperator(context.Background(), "kasir@apotik.id")

	res, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{
		ApotikID: "APT01",
		Lines:    []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: -10}},
	})
	require.NoError(t, err)
	require.Len(t, res.Movements, 1)
	m := res.Movements[0]
	assert.Equal(t, int64(50), m.Before)
	assert.Equal(t, int64(-10), m.Delta)
	assert.Equal(t, int64(40), m.After)
	assert.Equal(t, "kasir@apotik.id", m.Operator)
	assert.Regexp(t, adjPattern, res.NoBukti)
	assert.Equal(t, "ADJ-202405-0001", res.NoBukti)
	assert.Equal(t, int64(40), f.qty(t, "PRD-ASPIRIN", "APT01"))
}

func TestAdjustment_NegativoRequiereConfirmacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := inventory.AdjustmentInput{
		ApotikID: "APT01",
		Lines: []inventory.AdjustmentLine{
			{ProductID: "PRD-PCT", Qty: 5},
			{ProductID: "PRD-ASPIRIN", Qty: -60},
		},
	}

	_, err := f.adjustments.Apply(ctx, in)
	require.ErrorIs(t, err, domain.ErrNegativeStockConfirmation)
	var neg *domain.NegativeStockError
	require.True(t, errors.As(err, &neg))
	require.Len(t, neg.Lines, 1)
	assert.Equal(t, domain.NegativeLine{ProductID: "PRD-ASPIRIN", ApotikID: "APT01", Before: 50, After: -10}, neg.Lines[0])
	assert.Equal(t, int64(50), f.qty(t, "PRD-ASPIRIN", "APT01"), "lote completo descartado")
	assert.Equal(t, int64(30), f.qty(t, "PRD-PCT", "APT01"), "ni siquiera las líneas válidas se aplican")

	in.ConfirmNegative = true
	res, err := f.adjustments.Apply(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(-10), f.qty(t, "PRD-ASPIRIN", "APT01"))
	assert.Equal(t, int64(35), f.qty(t, "PRD-PCT", "APT01"), "StokAwal es el respaldo de la apotik sin entrada")
	for _, m := range res.Movements {
		assert.Equal(t, m.Before+m.Delta, m.After)
		assert.Equal(t, res.NoBukti, m.NoBukti)
		assert.Equal(t, inventory.DefaultOperator, m.Operator)
	}
}

func TestAdjustment_IncrementoQueSigueNegativoRequiereConfirmacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setQty(t, "PRD-ASPIRIN", "APT01", -20)
	in := inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: 5}}}

	_, err := f.adjustments.Apply(ctx, in)
	require.ErrorIs(t, err, domain.ErrNegativeStockConfirmation)
	var neg *domain.NegativeStockError
	require.True(t, errors.As(err, &neg))
	assert.Equal(t, domain.NegativeLine{ProductID: "PRD-ASPIRIN", ApotikID: "APT01", Before: -20, After: -15}, neg.Lines[0])
	assert.Equal(t, int64(-20), f.qty(t, "PRD-ASPIRIN", "APT01"))

	in.ConfirmNegative = true
	_, err = f.adjustments.Apply(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(-15), f.qty(t, "PRD-ASPIRIN", "APT01"))

	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: 15}}})
	require.NoError(t, err, "llegar a cero no requiere confirmación")
	assert.Equal(t, int64(0), f.qty(t, "PRD-ASPIRIN", "APT01"))
}

func TestAdjustment_DesbordamientoRechazado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setQty(t, "PRD-ASPIRIN", "APT01", math.MaxInt64-1)

	_, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", Qty: 5}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(math.MaxInt64-1), f.qty(t, "PRD-ASPIRIN", "APT01"))

	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-PCT", UnitID: "", Qty: math.MinInt64}}, ConfirmNegative: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(30), f.qty(t, "PRD-PCT", "APT01"))
}

func TestAdjustment_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{Lines: []inventory.AdjustmentLine{{ProductID: "PRD-PCT", Qty: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT03", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-PCT", Qty: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "apotik inactiva")

	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-PCT"}, {Qty: 3}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo líneas ignorables")

	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{
		{ProductID: "PRD-PCT", Qty: 1}, {ProductID: "PRD-PCT", Qty: 2},
	}})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)

	_, err = f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-PCT", UnitID: "box", Qty: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "unidad desconocida")
}

func TestAdjustment_UnidadYNumeracion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT01", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-ASPIRIN", UnitID: "strip", Qty: 2}}})
	require.NoError(t, err)
	assert.Equal(t, int64(20), first.Movements[0].Delta)
	assert.Equal(t, int64(2), first.Movements[0].UnitQty)
	assert.Equal(t, int64(70), f.qty(t, "PRD-ASPIRIN", "APT01"))

	second, err := f.adjustments.Apply(ctx, inventory.AdjustmentInput{ApotikID: "APT02", Lines: []inventory.AdjustmentLine{{ProductID: "PRD-PCT", Qty: -1}}})
	require.NoError(t, err)
	assert.Equal(t, "ADJ-202405-0002", second.NoBukti)

	batch, err := f.adjustments.GetBatch(ctx, first.NoBukti)
	require.NoError(t, err)
	assert.Len(t, batch, 1)

	_, err = f.adjustments.GetBatch(ctx, "ADJ-209901-0001")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.adjustments.List(ctx, repository.AdjustmentFilter{ApotikID: "APT02"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "PRD-PCT", list[0].ProductID)
}

func TestLedger_Levels(t *testing.T) {
	f := newFixture(t)
	levels, err := f.ledger.Levels(context.Background(), "PRD-PCT")
	require.NoError(t, err)
	require.Len(t, levels, 2, "solo apotik activas")
	assert.Equal(t, "APT01", levels[0].ApotikCode)
	assert.Equal(t, int64(30), levels[0].Quantity)

	_, err = f.ledger.Levels(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOperatorFrom(t *testing.T) {
	assert.Equal(t, "System", inventory.OperatorFrom(context.Background()))
	assert.Equal(t, "System", inventory.OperatorFrom(inventory.WithOperator(context.Background(), "  ")))
	assert.Equal(t, "a@b.c", inventory.OperatorFrom(inventory.WithOperator(context.Background(), "a@b.c")))
}

