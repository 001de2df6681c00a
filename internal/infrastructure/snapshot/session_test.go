package snapshot_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/domain/repository"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/snapshot"
)

func loaderFrom(data map[string][]byte, calls map[string]int) snapshot.Loader {
	return func(_ context.Context, key string) ([]byte, error) {
		calls[key]++
		return data[key], nil
	}
}

func TestSession_CargaPerezosaYDirty(t *testing.T) {
	raw, err := json.Marshal([]entity.Product{{ID: "p1", Code: "PRD-ASPIRIN", StokPerApotik: map[string]int64{"APT01": 50}, Version: 3}})
	require.NoError(t, err)
	calls := map[string]int{}
	s := snapshot.NewSession(context.Background(), loaderFrom(map[string][]byte{repository.KeyProducts: raw}, calls))

	p, err := s.Products().GetByID("p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	_, _ = s.Products().List()
	assert.Equal(t, 1, calls[repository.KeyProducts], "la colección se carga una sola vez")
	assert.Zero(t, calls[repository.KeyApotiks], "colecciones no usadas no se cargan")

	dirty, err := s.Dirty()
	require.NoError(t, err)
	assert.Empty(t, dirty, "lecturas no ensucian el snapshot")

	p.StokPerApotik["APT01"] = 40
	require.NoError(t, s.Products().Update(p))
	assert.Equal(t, int64(4), p.Version)

	dirty, err = s.Dirty()
	require.NoError(t, err)
	assert.Equal(t, []string{repository.KeyProducts}, snapshot.DirtyKeys(dirty))

	var saved []entity.Product
	require.NoError(t, json.Unmarshal(dirty[repository.KeyProducts], &saved))
	assert.Equal(t, int64(40), saved[0].StokPerApotik["APT01"])
}

func TestSession_CopiasIndependientes(t *testing.T) {
	s := snapshot.NewSession(context.Background(), loaderFrom(map[string][]byte{}, map[string]int{}))
	require.NoError(t, s.Products().Create(&entity.Product{ID: "p1", StokPerApotik: map[string]int64{"A": 1}}))

	p, err := s.Products().GetByID("p1")
	require.NoError(t, err)
	p.StokPerApotik["A"] = 99

	again, err := s.Products().GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.StokPerApotik["A"], "sin Update no hay cambios")
}

func TestSession_PengajuanConservaElTipoDeCambio(t *testing.T) {
	s := snapshot.NewSession(context.Background(), loaderFrom(map[string][]byte{}, map[string]int{}))
	edit := &entity.Pengajuan{
		ID:     "pg1",
		Target: entity.PengajuanTarget{Kind: entity.TargetPenyesuaian, RecordID: "m1"},
		Change: entity.EditChange{Adjustments: []entity.AdjustmentEdit{{RecordID: "m1", Delta: -3}}},
		Status: entity.PengajuanStatusPending,
	}
	del := &entity.Pengajuan{ID: "pg2", Change: entity.DeleteChange{}, Status: entity.PengajuanStatusPending}
	require.NoError(t, s.Pengajuan().Create(edit))
	require.NoError(t, s.Pengajuan().Create(del))

	got, err := s.Pengajuan().GetByID("pg1")
	require.NoError(t, err)
	change, ok := got.Change.(entity.EditChange)
	require.True(t, ok)
	assert.Equal(t, int64(-3), change.Adjustments[0].Delta)

	got, err = s.Pengajuan().GetByID("pg2")
	require.NoError(t, err)
	assert.IsType(t, entity.DeleteChange{}, got.Change)
}

func TestSession_ErroresDeRepositorio(t *testing.T) {
	s := snapshot.NewSession(context.Background(), loaderFrom(map[string][]byte{}, map[string]int{}))
	require.NoError(t, s.Apotiks().Create(&entity.Apotik{ID: "a1"}))

	err := s.Apotiks().Create(&entity.Apotik{ID: "a1"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	err = s.Apotiks().Update(&entity.Apotik{ID: "nope"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = s.Receipts().Delete("nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	missing, err := s.Transfers().GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSession_ErrorDeCarga(t *testing.T) {
	boom := errors.New("boom")
	s := snapshot.NewSession(context.Background(), func(context.Context, string) ([]byte, error) { return nil, boom })
	_, err := s.Opnames().GetByID("x")
	assert.ErrorIs(t, err, boom)
}
