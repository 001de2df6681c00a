package entity

import "time"

// ReceiptItem línea recibida: 0 < QtyReceived <= QtyTransferred (en la unidad de la transferencia).
type ReceiptItem struct {
	ProductID       string `json:"produkId"`
	UnitID          string `json:"satuanId,omitempty"`
	Factor          int64  `json:"konversi"`
	QtyTransferred  int64  `json:"jumlahTransfer"`
	QtyReceived     int64  `json:"jumlahDiterima"`
	BaseQtyReceived int64  `json:"jumlahBaseDiterima"`
}

// Receipt (terima transfer) es el único disparador que acredita stock en la apotik destino.
type Receipt struct {
	ID           string        `json:"id"`
	NoTerima     string        `json:"noTerima"`
	TransferID   string        `json:"transferId"`
	NoTransfer   string        `json:"noTransfer"`
	Date         time.Time     `json:"tanggalTerima"`
	FromApotikID string        `json:"apotikAsalId"`
	ToApotikID   string        `json:"apotikTujuanId"`
	Items        []ReceiptItem `json:"items"`
	Note         string        `json:"keterangan"`
	Operator     string        `json:"operator"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
