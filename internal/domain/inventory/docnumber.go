package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocumentPrefix devuelve "PREFIJO-YYYYMM-" para la fecha dada.
func DocumentPrefix(kind string, at time.Time) string {
	return fmt.Sprintf("%s-%04d%02d-", kind, at.Year(), int(at.Month()))
}

// NextDocumentNumber genera PREFIJO-YYYYMM-NNNN con NNNN = máximo secuencial existente del mes + 1.
// existing son los números ya emitidos en la colección (de cualquier mes).
func NextDocumentNumber(kind string, at time.Time, existing []string) string {
	prefix := DocumentPrefix(kind, at)
	maxSeq := 0
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%04d", prefix, maxSeq+1)
}
