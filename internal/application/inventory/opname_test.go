package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
)

func TestOpname_SelisihYFinalizacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setQty(t, "PRD-ASPIRIN", "APT01", 80)

	o, err := f.opnames.Start(ctx, inventory.OpnameInput{
		ApotikID: "APT01",
		Items:    []inventory.OpnameSelection{{ProductID: "PRD-ASPIRIN"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "OPN-202405-0001", o.NoOpname)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(80), o.Items[0].StokSistem)
	assert.Equal(t, int64(80), o.Items[0].StokFisik)
	assert.Equal(t, int64(0), o.Items[0].Selisih)

	note := "2 blister rusak"
	o, err = f.opnames.UpdateCounts(ctx, o.ID, []inventory.OpnameCount{{ProductID: "PRD-ASPIRIN", StokFisik: 75, Note: &note}}, o.Version)
	require.NoError(t, err)
	it := o.Items[0]
	assert.Equal(t, int64(-5), it.Selisih)
	assert.Equal(t, it.StokFisik-it.StokSistem, it.Selisih)
	assert.True(t, decimal.RequireFromString("-6252.5").Equal(it.NilaiSelisih), it.NilaiSelisih.String())
	assert.Equal(t, note, it.Note)
	assert.Equal(t, int64(80), f.qty(t, "PRD-ASPIRIN", "APT01"), "el opname no toca el stock")

	o, err = f.opnames.Finalize(ctx, o.ID, o.Version)
	require.NoError(t, err)
	assert.Equal(t, entity.OpnameStatusSelesai, o.Status)
	require.NotNil(t, o.FinalizedAt)

	_, err = f.opnames.UpdateCounts(ctx, o.ID, []inventory.OpnameCount{{ProductID: "PRD-ASPIRIN", StokFisik: 70}}, 0)
	assert.ErrorIs(t, err, domain.ErrOpnameFinalized)
	_, err = f.opnames.Finalize(ctx, o.ID, 0)
	assert.ErrorIs(t, err, domain.ErrOpnameFinalized)
	err = f.opnames.Delete(ctx, o.ID, 0)
	assert.ErrorIs(t, err, domain.ErrOpnameFinalized)

	got, err := f.opnames.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(75), got.Items[0].StokFisik)
}

func TestOpname_UnidadAlternativa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.opnames.Start(ctx, inventory.OpnameInput{
		ApotikID: "APT01",
		Items:    []inventory.OpnameSelection{{ProductID: "PRD-ASPIRIN", UnitID: "strip"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), o.Items[0].StokSistem)
	assert.Equal(t, int64(10), o.Items[0].Factor)

	o, err = f.opnames.UpdateCounts(ctx, o.ID, []inventory.OpnameCount{{ProductID: "PRD-ASPIRIN", StokFisik: 4}}, 0)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-12505").Equal(o.Items[0].NilaiSelisih))

	f.setQty(t, "PRD-ASPIRIN", "APT01", 55)
	_, err = f.opnames.Start(ctx, inventory.OpnameInput{
		ApotikID: "APT01",
		Items:    []inventory.OpnameSelection{{ProductID: "PRD-ASPIRIN", UnitID: "strip"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "stock no divisible por la unidad")
}

func TestOpname_DeleteYValidaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.opnames.Start(ctx, inventory.OpnameInput{ApotikID: "APT01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.opnames.Start(ctx, inventory.OpnameInput{ApotikID: "APT01", Items: []inventory.OpnameSelection{{ProductID: "PRD-PCT"}, {ProductID: "PRD-PCT"}}})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)

	o, err := f.opnames.Start(ctx, inventory.OpnameInput{ApotikID: "APT02", Items: []inventory.OpnameSelection{{ProductID: "PRD-PCT"}}})
	require.NoError(t, err)
	assert.Equal(t, int64(30), o.Items[0].StokSistem)

	_, err = f.opnames.UpdateCounts(ctx, o.ID, []inventory.OpnameCount{{ProductID: "PRD-PCT", StokFisik: 1}}, o.Version+5)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	_, err = f.opnames.UpdateCounts(ctx, o.ID, []inventory.OpnameCount{{ProductID: "PRD-ASPIRIN", StokFisik: 1}}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	drafts, err := f.opnames.List(ctx, "APT02", entity.OpnameStatusDraft)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	require.NoError(t, f.opnames.Delete(ctx, o.ID, o.Version))
	_, err = f.opnames.Get(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
