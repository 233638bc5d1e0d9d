// Package ebarimt contiene el motor de cálculo de impuestos y normalización de
// recibos fiscales ebarimt. Es puro: no hace I/O ni guarda estado.
package ebarimt

import (
	"github.com/shopspring/decimal"

	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

var (
	vatRate     = decimal.RequireFromString("0.10")
	cityTaxRate = decimal.RequireFromString("0.02")
)

// Round2 redondeo monetario único del motor: 2 decimales, mitad lejos de cero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TaxRates tasas aplicables a una línea y el divisor para obtener la base desde el total con impuestos.
type TaxRates struct {
	VATRate     decimal.Decimal
	CityTaxRate decimal.Decimal
	Divisor     decimal.Decimal
}

// RatesFor devuelve las tasas según la clasificación del recibo y el flag de impuesto de ciudad.
//
//	gravado + ciudad -> 1.12
//	gravado          -> 1.10
//	ciudad           -> 1.02
//	ninguno          -> 1.00
func RatesFor(taxType string, isNhat bool) TaxRates {
	r := TaxRates{VATRate: decimal.Zero, CityTaxRate: decimal.Zero, Divisor: decimal.NewFromInt(1)}
	if pkgebarimt.IsTaxable(taxType) {
		r.VATRate = vatRate
	}
	if isNhat {
		r.CityTaxRate = cityTaxRate
	}
	r.Divisor = r.Divisor.Add(r.VATRate).Add(r.CityTaxRate)
	return r
}

// TaxResult desglose redondeado de una línea.
type TaxResult struct {
	BaseAmount  decimal.Decimal
	VAT         decimal.Decimal
	CityTax     decimal.Decimal
	TotalAmount decimal.Decimal // eco del total recibido
	UnitPrice   decimal.Decimal
}

// CalculateItemTax recalcula la base desde un total con impuestos incluidos.
// Con qty <= 0 el precio unitario es 0.
func CalculateItemTax(total, qty decimal.Decimal, taxType string, isNhat bool) TaxResult {
	rates := RatesFor(taxType, isNhat)
	base := Round2(total.Div(rates.Divisor))

	res := TaxResult{
		BaseAmount:  base,
		VAT:         decimal.Zero,
		CityTax:     decimal.Zero,
		TotalAmount: total,
		UnitPrice:   decimal.Zero,
	}
	if pkgebarimt.IsTaxable(taxType) {
		res.VAT = Round2(base.Mul(vatRate))
	}
	if isNhat {
		res.CityTax = Round2(base.Mul(cityTaxRate))
	}
	if qty.IsPositive() {
		res.UnitPrice = Round2(total.Div(qty))
	}
	return res
}

// rawItemTax IVA e impuesto de ciudad sin redondear (total/divisor*tasa), usados para
// acumular en recibo y documento y redondear una sola vez por nivel.
func rawItemTax(total decimal.Decimal, taxType string, isNhat bool) (vat, cityTax decimal.Decimal) {
	rates := RatesFor(taxType, isNhat)
	base := total.Div(rates.Divisor)
	return base.Mul(rates.VATRate), base.Mul(rates.CityTaxRate)
}
