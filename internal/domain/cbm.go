package domain

import "github.com/shopspring/decimal"

var cubicCentimetresPerCubicMetre = decimal.NewFromInt(1_000_000)

// CBMScale is the number of decimal places total_cbm is stored with
const CBMScale = 12

// Volume returns the box volume in cubic metres times its quantity
func (b CargoBox) Volume() decimal.Decimal {
	return b.Length.Mul(b.Width).Mul(b.Height).Mul(decimal.NewFromInt(int64(b.Quantity))).
		Div(cubicCentimetresPerCubicMetre)
}

// TotalCBM sums length×width×height×quantity over every box and converts
// cubic centimetres to cubic metres
func TotalCBM(boxes []CargoBox) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range boxes {
		sum = sum.Add(b.Length.Mul(b.Width).Mul(b.Height).Mul(decimal.NewFromInt(int64(b.Quantity))))
	}
	return sum.Div(cubicCentimetresPerCubicMetre).Round(CBMScale)
}
