package dto

import "time"

// AdjustmentLineRequest línea de penyesuaian; Qty firmada en la unidad UnitID (vacía = base).
type AdjustmentLineRequest struct {
	ProductID string `json:"product_id"`
	UnitID    string `json:"unit_id"`
	Qty       int64  `json:"qty"`
}

// AdjustmentRequest body para POST /api/adjustments.
type AdjustmentRequest struct {
	ApotikID        string                  `json:"apotik_id"`
	Date            *time.Time              `json:"date"`
	Note            string                  `json:"note"`
	Lines           []AdjustmentLineRequest `json:"lines"`
	ConfirmNegative bool                    `json:"confirm_negative"`
}

// TransferLineRequest línea de transferencia.
type TransferLineRequest struct {
	ProductID string `json:"product_id"`
	UnitID    string `json:"unit_id"`
	Qty       int64  `json:"qty"`
}

// TransferRequest body para POST /api/transfers. Send=true crea y envía en un paso.
type TransferRequest struct {
	FromApotikID    string                `json:"from_apotik_id"`
	ToApotikID      string                `json:"to_apotik_id"`
	Date            *time.Time            `json:"date"`
	Note            string                `json:"note"`
	Lines           []TransferLineRequest `json:"lines"`
	Send            bool                  `json:"send"`
	ConfirmNegative bool                  `json:"confirm_negative"`
}

// SendTransferRequest body para POST /api/transfers/:id/send y /cancel.
type SendTransferRequest struct {
	ConfirmNegative bool  `json:"confirm_negative"`
	ExpectedVersion int64 `json:"expected_version"`
}

// VersionRequest body con la versión esperada (0 = no verificar).
type VersionRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
}

// ReceiveLineRequest cantidad recibida de un producto.
type ReceiveLineRequest struct {
	ProductID   string `json:"product_id"`
	QtyReceived int64  `json:"qty_received"`
}

// ReceiveRequest body para POST /api/transfers/:id/receive.
type ReceiveRequest struct {
	Date            *time.Time           `json:"date"`
	Note            string               `json:"note"`
	Lines           []ReceiveLineRequest `json:"lines"`
	ExpectedVersion int64                `json:"expected_version"`
	ConfirmNegative bool                 `json:"confirm_negative"`
}

// OpnameItemRequest producto a contar.
type OpnameItemRequest struct {
	ProductID string `json:"product_id"`
	UnitID    string `json:"unit_id"`
}

// StartOpnameRequest body para POST /api/opname.
type StartOpnameRequest struct {
	ApotikID string              `json:"apotik_id"`
	Date     *time.Time          `json:"date"`
	Items    []OpnameItemRequest `json:"items"`
}

// OpnameCountRequest conteo físico.
type OpnameCountRequest struct {
	ProductID string  `json:"product_id"`
	StokFisik int64   `json:"stok_fisik"`
	Note      *string `json:"note"`
}

// UpdateCountsRequest body para PUT /api/opname/:id/counts.
type UpdateCountsRequest struct {
	Counts          []OpnameCountRequest `json:"counts"`
	ExpectedVersion int64                `json:"expected_version"`
}

// PengajuanTargetRequest registro afectado.
type PengajuanTargetRequest struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	NoBukti  string `json:"no_bukti"`
	IsGlobal bool   `json:"is_global"`
}

// AdjustmentEditRequest nuevo delta (unidades base) de una línea de penyesuaian.
type AdjustmentEditRequest struct {
	RecordID string  `json:"record_id"`
	Delta    int64   `json:"delta"`
	Note     *string `json:"note"`
}

// ReceiptEditRequest nueva cantidad recibida.
type ReceiptEditRequest struct {
	ProductID   string `json:"product_id"`
	QtyReceived int64  `json:"qty_received"`
}

// SubmitPengajuanRequest body para POST /api/pengajuan. Jenis: "Edit Data" | "Hapus Data".
type SubmitPengajuanRequest struct {
	Target      PengajuanTargetRequest  `json:"target"`
	Jenis       string                  `json:"jenis"`
	Alasan      string                  `json:"alasan"`
	Adjustments []AdjustmentEditRequest `json:"adjustments"`
	Receipt     []ReceiptEditRequest    `json:"receipt"`
	Note        *string                 `json:"note"`
}

// DecideRequest body para POST /api/pengajuan/:id/decision.
type DecideRequest struct {
	Approve         bool   `json:"approve"`
	Note            string `json:"note"`
	ExpectedVersion int64  `json:"expected_version"`
}

// ApplyRequest body para POST /api/pengajuan/:id/apply.
type ApplyRequest struct {
	ConfirmNegative bool `json:"confirm_negative"`
}
