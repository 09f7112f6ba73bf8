package sales

import "fmt"

// DefaultNumberPrefix prefijo del número de venta.
const DefaultNumberPrefix = "SALE"

// FormatSaleNumber construye el identificador visible a partir del valor reservado en la secuencia.
func FormatSaleNumber(prefix string, width int, seq int64) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	if width <= 0 {
		width = 6
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, seq)
}
