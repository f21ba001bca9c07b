package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxOn computes the tax owed on a base amount at the given percentage
// rate, rounded half-up to the currency scale:
//
//	tax = round(base × rate / 100, 2)
//
// A negative rate is rejected; a zero rate yields zero tax.
func TaxOn(base Money, ratePercent decimal.Decimal) (Money, error) {
	if ratePercent.IsNegative() {
		return Money{}, fmt.Errorf("tax rate cannot be negative: %s", ratePercent)
	}
	tax := base.amount.Mul(ratePercent).Div(decimal.NewFromInt(100)).Round(CurrencyScale)
	return Money{amount: tax, currency: base.currency}, nil
}

// LineTotal computes the extended total of a billable line:
// unit price × quantity, rounded half-up, plus the already-rounded tax.
// Quantity must be positive.
func LineTotal(unitPrice Money, quantity decimal.Decimal, tax Money) (Money, error) {
	if !quantity.IsPositive() {
		return Money{}, fmt.Errorf("quantity must be positive: %s", quantity)
	}
	extended := unitPrice.Multiply(quantity).RoundCurrency()
	return extended.Add(tax)
}
