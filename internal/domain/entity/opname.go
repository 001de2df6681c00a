package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stok opname. Selesai es terminal.
const (
	OpnameStatusDraft   = "Draft"
	OpnameStatusSelesai = "Selesai"
)

// OpnameItem conteo de un producto. Cantidades en la unidad elegida (UnitID).
// Selisih = StokFisik - StokSistem; es informativo y no modifica el stock.
type OpnameItem struct {
	ProductID    string          `json:"produkId"`
	UnitID       string          `json:"satuanId,omitempty"`
	Factor       int64           `json:"konversi"`
	StokSistem   int64           `json:"stokSistem"`
	StokFisik    int64           `json:"stokFisik"`
	Selisih      int64           `json:"selisih"`
	NilaiSelisih decimal.Decimal `json:"nilaiSelisih"`
	Note         string          `json:"keterangan"`
}

// Opname documento de conteo físico por apotik.
type Opname struct {
	ID          string       `json:"id"`
	NoOpname    string       `json:"noOpname"`
	Date        time.Time    `json:"tanggal"`
	ApotikID    string       `json:"apotikId"`
	Status      string       `json:"status"`
	Items       []OpnameItem `json:"items"`
	Operator    string       `json:"operator"`
	FinalizedAt *time.Time   `json:"selesaiAt,omitempty"`
	Version     int64        `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
