package sales

import (
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/shopspring/decimal"
)

// MoneyPlaces precisión fija de los montos (centavos).
const MoneyPlaces = 2

// LineTotal total de línea = cantidad × precio unitario.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(MoneyPlaces)
}

// Total calcula subtotal + impuesto - descuento. Un total negativo se rechaza con ErrInvalidInput.
func Total(subtotal, tax, discount decimal.Decimal) (decimal.Decimal, error) {
	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: el descuento (%s) supera subtotal + impuesto (%s)",
			domain.ErrInvalidInput, discount.StringFixed(MoneyPlaces), subtotal.Add(tax).StringFixed(MoneyPlaces))
	}
	return total, nil
}

// NormalizeAmount valida que un monto de entrada (impuesto, descuento) no sea negativo y lo redondea.
func NormalizeAmount(name string, v decimal.Decimal) (decimal.Decimal, error) {
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s no puede ser negativo", domain.ErrInvalidInput, name)
	}
	return v.Round(MoneyPlaces), nil
}

// Reconciles verifica total == subtotal + tax - discount.
func Reconciles(subtotal, tax, discount, total decimal.Decimal) bool {
	return subtotal.Add(tax).Sub(discount).Equal(total)
}
