package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitDTO unidad alternativa con su factor a la unidad base.
type UnitDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Factor int64  `json:"factor"`
}

// CreateProductRequest entrada para crear un producto. StokAwal es el único stock que se fija aquí.
type CreateProductRequest struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	BaseUnit      string          `json:"base_unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Units         []UnitDTO       `json:"units"`
	StokAwal      int64           `json:"stok_awal"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock: se maneja vía movimientos).
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Units         []UnitDTO        `json:"units"`
	Active        *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	BaseUnit      string           `json:"base_unit"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	Units         []UnitDTO        `json:"units"`
	StokAwal      int64            `json:"stok_awal"`
	StokPerApotik map[string]int64 `json:"stok_per_apotik"`
	Active        bool             `json:"active"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
