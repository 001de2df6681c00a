package entity

import "time"

// Estados de transferencia: Draft -> Dikirim -> Diterima; Draft|Dikirim -> Dibatalkan.
const (
	TransferStatusDraft      = "Draft"
	TransferStatusDikirim    = "Dikirim"
	TransferStatusDiterima   = "Diterima"
	TransferStatusDibatalkan = "Dibatalkan"
)

// TransferItem línea de una transferencia. BaseQty = Qty * factor de la unidad.
type TransferItem struct {
	ProductID string `json:"produkId"`
	UnitID    string `json:"satuanId,omitempty"`
	Qty       int64  `json:"jumlahTransfer"`
	BaseQty   int64  `json:"jumlahBase"`
}

// Transfer traslado de stock entre dos apotik. El stock de origen se descuenta al pasar a Dikirim.
type Transfer struct {
	ID           string         `json:"id"`
	NoTransfer   string         `json:"noTransfer"`
	Date         time.Time      `json:"tanggalTransfer"`
	FromApotikID string         `json:"apotikAsalId"`
	ToApotikID   string         `json:"apotikTujuanId"`
	Items        []TransferItem `json:"items"`
	Status       string         `json:"status"`
	Note         string         `json:"keterangan"`
	Operator     string         `json:"operator"`
	SentAt       *time.Time     `json:"dikirimAt,omitempty"`
	ReceivedAt   *time.Time     `json:"diterimaAt,omitempty"`
	CancelledAt  *time.Time     `json:"dibatalkanAt,omitempty"`
	Version      int64          `json:"version"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// FindItem devuelve la línea del producto indicado.
func (t *Transfer) FindItem(productID string) (TransferItem, bool) {
	for _, it := range t.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return TransferItem{}, false
}
