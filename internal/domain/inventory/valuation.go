package inventory

import "github.com/shopspring/decimal"

// VarianceValue valoriza un selisih de opname al precio de compra:
// Valor = Selisih * Factor * PrecioCompra (precio por unidad base).
func VarianceValue(selisih, factor int64, purchasePrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(selisih).Mul(decimal.NewFromInt(factor)).Mul(purchasePrice)
}
