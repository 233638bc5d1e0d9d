// Package pdf genera la representación gráfica de un recibo ebarimt emitido.
//
// Layout A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: TIN comerciante + POS  │  Tipo + Fecha + ID         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: TIN / consumidor (si aplica)                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA por sub-recibo: Cant | Nombre | P.Unit | IVA | Total  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: IVA / Impuesto ciudad / TOTAL                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Lotería + QR + pedido                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

var _ billing.ReceiptPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 86, Blue: 150}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.ReceiptPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateReceiptPDF genera el PDF del recibo y devuelve sus bytes.
// TODO: registrar una fuente TTF con cirílico (config.WithCustomFonts); helvetica no dibuja los nombres en mongol.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(
	_ context.Context,
	rec *entity.ReceiptRecord,
	doc *entity.DirectBillRequest,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("ebarimt "+rec.OrderID, true).
		WithAuthor(doc.MerchantTin, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rec, doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if r, ok := customerRow(doc); ok {
		m.AddRows(r)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	for i, receipt := range doc.Receipts {
		m.AddRows(receiptTitleRow(i, receipt))
		m.AddRows(tableHeaderRow())
		m.AddRows(itemRows(receipt.Items)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))
	if len(doc.Payments) > 0 {
		m.AddRows(paymentRows(doc.Payments)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(rec)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rec *entity.ReceiptRecord, doc *entity.DirectBillRequest) core.Row {
	date := rec.CreatedAt.Format(billing.DateLayout)
	if rec.ResponseDate != nil {
		date = rec.ResponseDate.Format(billing.DateLayout)
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New("TIN "+doc.MerchantTin, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("POS %s   |   District %s   |   Branch %s", doc.PosNo, doc.DistrictCode, doc.BranchNo),
				props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(strings.ReplaceAll(doc.Type, "_", " "), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(date, props.Text{Size: 8, Align: align.Right, Top: 7, Color: colorGray}),
		),
	)
}

func customerRow(doc *entity.DirectBillRequest) (core.Row, bool) {
	var parts []string
	if doc.CustomerTin != "" {
		parts = append(parts, "Customer TIN: "+doc.CustomerTin)
	}
	if doc.ConsumerNo != "" {
		parts = append(parts, "Consumer: "+doc.ConsumerNo)
	}
	if pkgebarimt.IsInvoice(doc.Type) && doc.InvoiceID != nil {
		parts = append(parts, "Invoice: "+*doc.InvoiceID)
	}
	if len(parts) == 0 {
		return nil, false
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Top: 2}),
	)), true
}

func receiptTitleRow(i int, r entity.DirectReceipt) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Receipt %d  ·  %s  ·  TIN %s", i+1, r.TaxType, r.MerchantTin), props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Qty", 1, align.Center),
		h("Name", 5, align.Left),
		h("Unit price", 2, align.Right),
		h("VAT", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func itemRows(items []entity.DirectItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(6).Add(
			col.New(1).Add(text.New(it.Qty.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(it.TotalVAT), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(it.TotalAmount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(doc *entity.DirectBillRequest) core.Row {
	label := func(s string, bold bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 2}
		if bold {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		return text.New(s, p)
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("VAT:", false),
			label("City tax:", false),
			label("TOTAL (MNT):", true),
		),
		col.New(3).Add(
			label(formatMoney(doc.TotalVAT), false),
			label(formatMoney(doc.TotalCityTax), false),
			label(formatMoney(doc.TotalAmount), true),
		),
	)
}

func paymentRows(payments []entity.PaymentLine) []core.Row {
	rows := make([]core.Row, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(p.Code+" ("+p.Status+")", props.Text{Size: 8, Align: align.Right, Right: 2, Color: colorGray})),
			col.New(3).Add(text.New(formatMoney(p.PaidAmount), props.Text{Size: 8, Align: align.Right, Right: 2, Color: colorGray})),
		))
	}
	return rows
}

func footerRows(rec *entity.ReceiptRecord) []core.Row {
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(
			text.New("DDTD / ebarimt ID:", props.Text{Style: fontstyle.Bold, Size: 7, Top: 1}),
		)),
	}
	for _, chunk := range splitEvery(rec.EbarimtID, 60) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 7, Color: colorGray, Left: 2}),
		)))
	}
	rows = append(rows, row.New(3))

	lottery := "Lottery: " + nonEmpty(rec.Lottery, "-")
	if rec.QRData != "" {
		rows = append(rows, row.New(50).Add(
			col.New(4).Add(code.NewQr(rec.QRData, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New(lottery, props.Text{Style: fontstyle.Bold, Size: 12, Top: 6, Left: 3, Color: colorPrimary}),
				text.New("Order "+rec.OrderID, props.Text{Size: 8, Top: 16, Left: 3, Color: colorGray}),
				text.New("Scan the QR code with the ebarimt app to register this receipt.", props.Text{
					Size: 8, Top: 24, Left: 3, Color: colorGray,
				}),
			),
		))
	} else {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New(lottery+"   |   Order "+rec.OrderID, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 2,
			}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney importe con dos decimales y comas de miles. Ej: 1234567.5 → "1,234,567.50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + frac
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
