package inventory

import (
	"math"

	"github.com/jhoicas/Apotik-api/internal/domain"
	"github.com/jhoicas/Apotik-api/internal/domain/entity"
)

// ConvertToBaseUnits convierte qty expresada en unitID a unidades base (qty * factor).
// Devuelve ValidationError si la unidad no existe en el producto o el factor es inválido.
func ConvertToBaseUnits(product *entity.Product, unitID string, qty int64) (int64, error) {
	unit, ok := product.FindUnit(unitID)
	if !ok {
		return 0, domain.Invalid("unit", "desconocida para el producto "+product.Code)
	}
	if unit.Factor < 1 {
		return 0, domain.Invalid("unit", "factor de conversión inválido para "+unit.ID)
	}
	return MulFactor(qty, unit.Factor)
}

// MulFactor devuelve qty * factor o ValidationError si el resultado no cabe en int64.
// El resultado siempre es negable sin desbordar.
func MulFactor(qty, factor int64) (int64, error) {
	if factor < 1 {
		factor = 1
	}
	if qty == math.MinInt64 || qty > math.MaxInt64/factor || qty < -math.MaxInt64/factor {
		return 0, domain.Invalid("qty", "fuera de rango para el factor de conversión")
	}
	return qty * factor, nil
}

// AddQuantity devuelve a + b o ValidationError si la suma desborda int64.
func AddQuantity(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, domain.Invalid("qty", "el stock resultante está fuera de rango")
	}
	return a + b, nil
}

// ConvertFromBaseUnits convierte una cantidad base a unitID.
// Una cantidad que no es divisible por el factor se rechaza en lugar de truncarse.
func ConvertFromBaseUnits(product *entity.Product, unitID string, baseQty int64) (int64, error) {
	unit, ok := product.FindUnit(unitID)
	if !ok {
		return 0, domain.Invalid("unit", "desconocida para el producto "+product.Code)
	}
	if unit.Factor < 1 {
		return 0, domain.Invalid("unit", "factor de conversión inválido para "+unit.ID)
	}
	if baseQty%unit.Factor != 0 {
		return 0, domain.Invalid("unit", "el stock de "+product.Code+" no es divisible por la unidad "+unit.ID)
	}
	return baseQty / unit.Factor, nil
}
