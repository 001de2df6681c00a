package entity

import "time"

// Apotik representa una sucursal (farmacia) donde se particiona el stock.
// Solo las activas participan en transacciones nuevas; el histórico que las referencia sigue siendo válido.
type Apotik struct {
	ID        string    `json:"id"`
	Code      string    `json:"kodeApotik"`
	Name      string    `json:"namaApotik"`
	Address   string    `json:"alamat"`
	City      string    `json:"kota"`
	Phone     string    `json:"telepon"`
	Active    bool      `json:"statusAktif"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
