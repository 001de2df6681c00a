package entity

import "time"

// Prefijos de numeración de documentos (PREFIJO-YYYYMM-NNNN).
const (
	PrefixAdjustment = "ADJ"
	PrefixTransfer   = "TRF"
	PrefixReceipt    = "TRM"
	PrefixOpname     = "OPN"
)

// StockMovement línea de penyesuaian stok (ajuste manual).
// Invariante: After == Before + Delta. Las líneas con el mismo NoBukti forman un lote.
type StockMovement struct {
	ID        string    `json:"id"`
	NoBukti   string    `json:"noBuktiPenyesuaian"`
	Date      time.Time `json:"tanggal"`
	ApotikID  string    `json:"apotikId"`
	ProductID string    `json:"produkId"`
	UnitID    string    `json:"satuanId,omitempty"`
	UnitQty   int64     `json:"jumlahSatuan,omitempty"` // cantidad en la unidad elegida, solo informativa
	Before    int64     `json:"stokSebelum"`
	Delta     int64     `json:"penyesuaian"`
	After     int64     `json:"stokSesudah"`
	Note      string    `json:"keterangan"`
	Operator  string    `json:"operator"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
