package ebarimt_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"github.com/itsystem/posapi-bridge/internal/domain/ebarimt"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

func digitsToString(ds []int) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

func withCheckDigit(body string) string {
	return body + strconv.Itoa(pkgebarimt.GS1CheckDigit(body))
}

func flipLast(code string) string {
	last := int(code[len(code)-1] - '0')
	return code[:len(code)-1] + strconv.Itoa((last+1)%10)
}

func TestBarcodeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ISBN-13 con control correcto es ISBN y al alterar el control es UNDEFINED", prop.ForAll(
		func(prefix string, ds []int) bool {
			code := withCheckDigit(prefix + digitsToString(ds))
			return pkgebarimt.ClassifyBarcode(code) == pkgebarimt.BarcodeISBN &&
				pkgebarimt.ClassifyBarcode(flipLast(code)) == pkgebarimt.BarcodeUndefined
		},
		gen.OneConstOf("978", "979"),
		gen.SliceOfN(9, gen.IntRange(0, 9)),
	))

	properties.Property("GS1 con control correcto es GS1 y al alterar el control es UNDEFINED", prop.ForAll(
		func(length int, ds []int) bool {
			body := digitsToString(ds[:length-1])
			if length == 13 && (strings.HasPrefix(body, "978") || strings.HasPrefix(body, "979")) {
				return true
			}
			code := withCheckDigit(body)
			return pkgebarimt.ClassifyBarcode(code) == pkgebarimt.BarcodeGS1 &&
				pkgebarimt.ClassifyBarcode(flipLast(code)) == pkgebarimt.BarcodeUndefined
		},
		gen.OneConstOf(8, 12, 13, 14),
		gen.SliceOfN(13, gen.IntRange(0, 9)),
	))

	properties.TestingRun(t)
}

func TestTaxProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("CalculateItemTax es idempotente", prop.ForAll(
		func(cents int64, qty int64, taxable, nhat bool) bool {
			total := decimal.New(cents, -2)
			q := decimal.NewFromInt(qty)
			taxType := pkgebarimt.TaxVATFree
			if taxable {
				taxType = pkgebarimt.TaxVATAble
			}
			a := ebarimt.CalculateItemTax(total, q, taxType, nhat)
			b := ebarimt.CalculateItemTax(a.TotalAmount, q, taxType, nhat)
			return a.BaseAmount.Equal(b.BaseAmount) && a.VAT.Equal(b.VAT) &&
				a.CityTax.Equal(b.CityTax) && a.UnitPrice.Equal(b.UnitPrice) &&
				a.TotalAmount.Equal(b.TotalAmount)
		},
		gen.Int64Range(1, 100_000_000),
		gen.Int64Range(0, 50),
		gen.Bool(),
		gen.Bool(),
	))

	properties.Property("los totales de recibo y documento son la suma redondeada de sus partes", prop.ForAll(
		func(cents []int64, taxable bool) bool {
			taxType := pkgebarimt.TaxNoVAT
			if taxable {
				taxType = pkgebarimt.TaxVATAble
			}
			half := len(cents) / 2
			groups := [][]int64{cents[:half+1], cents[half+1:]}

			in := validRequest()
			in.Receipts = nil
			sum := decimal.Zero
			for _, g := range groups {
				if len(g) == 0 {
					continue
				}
				r := entity.InputReceipt{TaxType: taxType}
				for i, c := range g {
					amount := decimal.New(c, -2)
					sum = sum.Add(amount)
					r.Items = append(r.Items, entity.InputItem{
						Name: "item", Qty: decimal.NewFromInt(1), TotalAmount: amount, IsNhat: i%2 == 0,
					})
				}
				in.Receipts = append(in.Receipts, r)
			}
			in.Payments = []entity.PaymentLine{paid("CASH", sum.String())}

			out, err := ebarimt.ProcessBillRequest(in)
			if err != nil {
				return false
			}
			root := decimal.Zero
			for _, r := range out.Receipts {
				items := decimal.Zero
				for _, it := range r.Items {
					items = items.Add(it.TotalAmount)
				}
				if !ebarimt.Round2(items).Equal(r.TotalAmount) {
					return false
				}
				root = root.Add(r.TotalAmount)
			}
			return ebarimt.Round2(root).Equal(out.TotalAmount)
		},
		gen.SliceOfN(6, gen.Int64Range(1, 5_000_000)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
