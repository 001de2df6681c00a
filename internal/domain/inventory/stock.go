package inventory

import "github.com/jhoicas/Apotik-api/internal/domain/entity"

// Quantity devuelve el stock de la apotik: la entrada de StokPerApotik si existe,
// si no StokAwal (que ya es 0 cuando no se definió).
func Quantity(p *entity.Product, apotikID string) int64 {
	if qty, ok := p.StokPerApotik[apotikID]; ok {
		return qty
	}
	return p.StokAwal
}

// SetQuantity fija el stock de la apotik creando la entrada si no existe.
// No valida negativos: el caller debe haber obtenido la confirmación explícita.
func SetQuantity(p *entity.Product, apotikID string, qty int64) {
	if p.StokPerApotik == nil {
		p.StokPerApotik = make(map[string]int64)
	}
	p.StokPerApotik[apotikID] = qty
}

// NeedsConfirmation indica si el stock resultante es negativo. Aplica también a
// incrementos sobre un stock ya negativo: ninguna escritura negativa es implícita.
func NeedsConfirmation(after int64) bool {
	return after < 0
}
