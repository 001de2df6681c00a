package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit unidad alternativa de un producto (ej. strip, box) con su factor a la unidad base.
type Unit struct {
	ID     string `json:"id"`
	Name   string `json:"nama"`
	Factor int64  `json:"konversi"` // cantidad de unidades base por unidad
}

// Product representa un producto del catálogo compartido por todas las apotik.
// StokPerApotik es autoritativo para las apotik presentes; StokAwal es el respaldo para las demás.
// Todas las cantidades están en unidades base (pcs).
type Product struct {
	ID            string           `json:"id"`
	Code          string           `json:"kodeProduk"`
	Name          string           `json:"namaProduk"`
	Category      string           `json:"kategori"`
	BaseUnit      string           `json:"satuan"`
	PurchasePrice decimal.Decimal  `json:"hargaBeli"`
	SalePrice     decimal.Decimal  `json:"hargaJual"`
	Units         []Unit           `json:"units,omitempty"`
	StokAwal      int64            `json:"stokAwal"`
	StokPerApotik map[string]int64 `json:"stokPerApotik,omitempty"`
	Active        bool             `json:"statusAktif"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// FindUnit devuelve la unidad con el ID dado. El ID vacío o igual a BaseUnit es la unidad base.
func (p *Product) FindUnit(unitID string) (Unit, bool) {
	if unitID == "" || unitID == p.BaseUnit {
		return Unit{ID: p.BaseUnit, Name: p.BaseUnit, Factor: 1}, true
	}
	for _, u := range p.Units {
		if u.ID == unitID {
			return u, true
		}
	}
	return Unit{}, false
}
