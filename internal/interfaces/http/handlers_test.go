package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Apotik-api/internal/application/dto"
	"github.com/jhoicas/Apotik-api/internal/application/inventory"
	"github.com/jhoicas/Apotik-api/internal/application/usecase"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
	"github.com/jhoicas/Apotik-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Apotik-api/internal/interfaces/http"
	"github.com/jhoicas/Apotik-api/pkg/logger"
)

type apiFixture struct {
	app     *fiber.App
	apt1    string
	apt2    string
	product string
}

// newAPI arma la API completa sobre un store en memoria con dos apotik y un producto (stok awal 5).
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	apotikUC := usecase.NewApotikUseCase(store)
	productUC := usecase.NewProductUseCase(store)
	adjustments := inventory.NewAdjustmentEngine(store, nil)
	transfers := inventory.NewTransferEngine(store, nil)

	ctx := context.Background()
	a1, err := apotikUC.Create(ctx, dto.CreateApotikRequest{Code: "APT01", Name: "Apotik Pusat"})
	require.NoError(t, err)
	a2, err := apotikUC.Create(ctx, dto.CreateApotikRequest{Code: "APT02", Name: "Apotik Cabang"})
	require.NoError(t, err)
	p, err := productUC.Create(ctx, dto.CreateProductRequest{
		Code:     "PRD-ASPIRIN",
		Name:     "Aspirin 500mg",
		Units:    []dto.UnitDTO{{ID: "strip", Name: "Strip", Factor: 10}},
		StokAwal: 5,
	})
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ApotikUC:    apotikUC,
		ProductUC:   productUC,
		Ledger:      inventory.NewStockLedger(store),
		Adjustments: adjustments,
		Transfers:   transfers,
		Opname:      inventory.NewOpnameEngine(store, nil),
		Approval:    inventory.NewApprovalGate(store, nil, adjustments, transfers),
		Store:       store,
		JWTSecret:   testJWTSecret,
		Logger:      logger.Nop().Zerolog(),
	})
	return &apiFixture{app: app, apt1: a1.ID, apt2: a2.ID, product: p.ID}
}

func (f *apiFixture) call(t *testing.T, method, path, role string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *apiFixture) quantity(t *testing.T, apotikID string) int64 {
	t.Helper()
	var out struct {
		Quantity int64 `json:"quantity"`
	}
	status := f.call(t, http.MethodGet, "/api/stock?product_id="+f.product+"&apotik_id="+apotikID, apphttp.RoleStaff, nil, &out)
	require.Equal(t, http.StatusOK, status)
	return out.Quantity
}

func TestAdjustment_StockNegativoRequiereConfirmacion(t *testing.T) {
	f := newAPI(t)
	req := dto.AdjustmentRequest{
		ApotikID: f.apt1,
		Note:     "barang rusak",
		Lines:    []dto.AdjustmentLineRequest{{ProductID: f.product, Qty: -8}},
	}

	var errBody struct {
		Code    string           `json:"code"`
		Details []map[string]any `json:"details"`
	}
	status := f.call(t, http.MethodPost, "/api/adjustments", apphttp.RoleStaff, req, &errBody)
	assert.Equal(t, http.StatusPreconditionRequired, status)
	assert.Equal(t, "NEGATIVE_STOCK_CONFIRMATION", errBody.Code)
	require.Len(t, errBody.Details, 1)
	assert.EqualValues(t, 5, errBody.Details[0]["before"])
	assert.EqualValues(t, -3, errBody.Details[0]["after"])
	assert.Equal(t, int64(5), f.quantity(t, f.apt1), "sin confirmación no se toca el stock")

	req.ConfirmNegative = true
	var created struct {
		NoBukti   string                  `json:"no_bukti"`
		Movements []*entity.StockMovement `json:"movements"`
	}
	status = f.call(t, http.MethodPost, "/api/adjustments", apphttp.RoleStaff, req, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, created.NoBukti)
	require.Len(t, created.Movements, 1)
	assert.Equal(t, testEmail, created.Movements[0].Operator)
	assert.Equal(t, int64(-3), f.quantity(t, f.apt1))
}

func TestAdjustment_Validaciones(t *testing.T) {
	f := newAPI(t)

	status := f.call(t, http.MethodPost, "/api/adjustments", apphttp.RoleStaff, dto.AdjustmentRequest{
		ApotikID: f.apt1,
		Lines:    []dto.AdjustmentLineRequest{{ProductID: f.product, Qty: 1}, {ProductID: f.product, Qty: 2}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "producto repetido")

	status = f.call(t, http.MethodPost, "/api/adjustments", apphttp.RoleStaff, dto.AdjustmentRequest{
		ApotikID: f.apt1,
		Lines:    []dto.AdjustmentLineRequest{{ProductID: "no-existe", Qty: 1}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "producto inexistente")

	status = f.call(t, http.MethodGet, "/api/adjustments/PNY-NADA", apphttp.RoleStaff, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTransfer_EnviarYRecibir(t *testing.T) {
	f := newAPI(t)

	var transfer entity.Transfer
	status := f.call(t, http.MethodPost, "/api/transfers", apphttp.RoleStaff, dto.TransferRequest{
		FromApotikID: f.apt1,
		ToApotikID:   f.apt2,
		Lines:        []dto.TransferLineRequest{{ProductID: f.product, Qty: 4}},
		Send:         true,
	}, &transfer)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, entity.TransferStatusDikirim, transfer.Status)
	assert.Equal(t, int64(1), f.quantity(t, f.apt1))

	var pending []entity.Transfer
	status = f.call(t, http.MethodGet, "/api/transfers/pending?to_apotik_id="+f.apt2, apphttp.RoleStaff, nil, &pending)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, pending, 1)

	receive := dto.ReceiveRequest{Lines: []dto.ReceiveLineRequest{{ProductID: f.product, QtyReceived: 4}}}
	var receipt entity.Receipt
	status = f.call(t, http.MethodPost, "/api/transfers/"+transfer.ID+"/receive", apphttp.RoleStaff, receive, &receipt)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, transfer.ID, receipt.TransferID)
	assert.Equal(t, int64(9), f.quantity(t, f.apt2))

	status = f.call(t, http.MethodPost, "/api/transfers/"+transfer.ID+"/receive", apphttp.RoleStaff, receive, nil)
	assert.Equal(t, http.StatusConflict, status)
	status = f.call(t, http.MethodPost, "/api/transfers/"+transfer.ID+"/cancel", apphttp.RoleStaff, nil, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestTransfer_SobreRecepcionRechazada(t *testing.T) {
	f := newAPI(t)
	var transfer entity.Transfer
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/transfers", apphttp.RoleStaff, dto.TransferRequest{
		FromApotikID: f.apt1,
		ToApotikID:   f.apt2,
		Lines:        []dto.TransferLineRequest{{ProductID: f.product, Qty: 2}},
		Send:         true,
	}, &transfer))

	status := f.call(t, http.MethodPost, "/api/transfers/"+transfer.ID+"/receive", apphttp.RoleStaff,
		dto.ReceiveRequest{Lines: []dto.ReceiveLineRequest{{ProductID: f.product, QtyReceived: 3}}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPengajuan_FlujoAprobacion(t *testing.T) {
	f := newAPI(t)
	var created struct {
		Movements []*entity.StockMovement `json:"movements"`
	}
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/adjustments", apphttp.RoleStaff, dto.AdjustmentRequest{
		ApotikID: f.apt1,
		Lines:    []dto.AdjustmentLineRequest{{ProductID: f.product, Qty: 3}},
	}, &created))
	require.Equal(t, int64(8), f.quantity(t, f.apt1))

	submit := dto.SubmitPengajuanRequest{
		Target: dto.PengajuanTargetRequest{Kind: entity.TargetPenyesuaian, RecordID: created.Movements[0].ID},
		Jenis:  entity.JenisDelete,
		Alasan: "salah input",
	}
	var p entity.Pengajuan
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/pengajuan", apphttp.RoleStaff, submit, &p))
	assert.Equal(t, entity.PengajuanStatusPending, p.Status)
	assert.Equal(t, testEmail, p.RequestedBy)

	status := f.call(t, http.MethodPost, "/api/pengajuan", apphttp.RoleStaff, submit, nil)
	assert.Equal(t, http.StatusConflict, status, "ya hay una pengajuan activa sobre el registro")

	status = f.call(t, http.MethodPost, "/api/pengajuan/"+p.ID+"/decision", apphttp.RoleStaff, dto.DecideRequest{Approve: true}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = f.call(t, http.MethodPost, "/api/pengajuan/"+p.ID+"/decision", apphttp.RoleApoteker,
		dto.DecideRequest{Approve: true, ExpectedVersion: p.Version + 1}, nil)
	assert.Equal(t, http.StatusConflict, status, "versión esperada desactualizada")

	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, "/api/pengajuan/"+p.ID+"/decision", apphttp.RoleApoteker,
		dto.DecideRequest{Approve: true, ExpectedVersion: p.Version}, &p))
	assert.Equal(t, entity.PengajuanStatusApproved, p.Status)

	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, "/api/pengajuan/"+p.ID+"/apply", apphttp.RoleApoteker, nil, &p))
	assert.Equal(t, entity.PengajuanStatusApplied, p.Status)
	assert.Equal(t, int64(5), f.quantity(t, f.apt1))

	status = f.call(t, http.MethodPost, "/api/pengajuan/"+p.ID+"/apply", apphttp.RoleApoteker, nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, int64(5), f.quantity(t, f.apt1))
}

func TestPengajuan_JenisInvalido(t *testing.T) {
	f := newAPI(t)
	status := f.call(t, http.MethodPost, "/api/pengajuan", apphttp.RoleStaff, dto.SubmitPengajuanRequest{
		Target: dto.PengajuanTargetRequest{Kind: entity.TargetPenyesuaian, RecordID: "x"},
		Jenis:  "Otra",
		Alasan: "x",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOpname_FlujoCompleto(t *testing.T) {
	f := newAPI(t)
	var o entity.Opname
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/opname", apphttp.RoleStaff, dto.StartOpnameRequest{
		ApotikID: f.apt1,
		Items:    []dto.OpnameItemRequest{{ProductID: f.product}},
	}, &o))
	assert.Equal(t, entity.OpnameStatusDraft, o.Status)

	require.Equal(t, http.StatusOK, f.call(t, http.MethodPut, "/api/opname/"+o.ID+"/counts", apphttp.RoleStaff, dto.UpdateCountsRequest{
		Counts: []dto.OpnameCountRequest{{ProductID: f.product, StokFisik: 4}},
	}, &o))
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, "/api/opname/"+o.ID+"/finalize", apphttp.RoleStaff, nil, &o))
	assert.Equal(t, entity.OpnameStatusSelesai, o.Status)
	assert.Equal(t, int64(5), f.quantity(t, f.apt1), "finalizar no modifica stock")

	status := f.call(t, http.MethodPut, "/api/opname/"+o.ID+"/counts", apphttp.RoleStaff, dto.UpdateCountsRequest{
		Counts: []dto.OpnameCountRequest{{ProductID: f.product, StokFisik: 1}},
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestMasterData_RolesYNoEncontrado(t *testing.T) {
	f := newAPI(t)

	status := f.call(t, http.MethodPost, "/api/apotik", apphttp.RoleStaff, dto.CreateApotikRequest{Code: "APT03", Name: "x"}, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status = f.call(t, http.MethodPost, "/api/apotik", apphttp.RoleAdmin, dto.CreateApotikRequest{Code: "APT01", Name: "x"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = f.call(t, http.MethodGet, "/api/products/no-existe", apphttp.RoleStaff, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var levels []inventory.StockLevel
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/products/"+f.product+"/stock", apphttp.RoleStaff, nil, &levels))
	require.Len(t, levels, 2)
	assert.Equal(t, "APT01", levels[0].ApotikCode)
	assert.Equal(t, int64(5), levels[0].Quantity)

	var list dto.ProductListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/products", apphttp.RoleStaff, nil, &list))
	assert.Equal(t, 1, list.Page.Total)
}

func TestSync_RefreshSinRemoto(t *testing.T) {
	f := newAPI(t)
	assert.Equal(t, http.StatusOK, f.call(t, http.MethodPost, "/api/sync/refresh", apphttp.RoleStaff, nil, nil))
	assert.Equal(t, http.StatusBadRequest, f.call(t, http.MethodPost, "/api/sync/refresh?key=otra", apphttp.RoleStaff, nil, nil))
}
