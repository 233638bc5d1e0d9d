package ebarimt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

// ProcessorConfig valores por defecto de los ítems cuando el frontend no los envía.
type ProcessorConfig struct {
	DefaultMeasureUnit        string
	DefaultClassificationCode string
	DefaultTaxProductCode     string // vacío = null en el documento
}

// DefaultProcessorConfig valores de catálogo.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		DefaultMeasureUnit:        pkgebarimt.DefaultMeasureUnit,
		DefaultClassificationCode: pkgebarimt.DefaultClassificationCode,
	}
}

// BillProcessor normaliza pedidos en documentos fiscales. Solo guarda configuración inmutable;
// es seguro usarlo desde varias goroutines.
type BillProcessor struct {
	cfg ProcessorConfig
}

// NewBillProcessor construye el procesador; los campos vacíos toman el valor de catálogo.
func NewBillProcessor(cfg ProcessorConfig) BillProcessor {
	def := DefaultProcessorConfig()
	if cfg.DefaultMeasureUnit == "" {
		cfg.DefaultMeasureUnit = def.DefaultMeasureUnit
	}
	if cfg.DefaultClassificationCode == "" {
		cfg.DefaultClassificationCode = def.DefaultClassificationCode
	}
	return BillProcessor{cfg: cfg}
}

// ProcessBillRequest atajo con la configuración de catálogo.
func ProcessBillRequest(in entity.InputBillRequest) (*entity.DirectBillRequest, error) {
	return NewBillProcessor(ProcessorConfig{}).Process(in)
}

// Process valida el pedido, calcula impuestos por ítem, agrega por recibo y documento
// y concilia pagos. Devuelve el documento completo o (nil, *domain.ValidationError);
// nunca un resultado parcial.
//
// Totales: suma de totales de ítems redondeada una vez por nivel. IVA e impuesto de
// ciudad se acumulan sin redondear (total/divisor*tasa) y se redondean una vez por nivel.
func (p BillProcessor) Process(in entity.InputBillRequest) (*entity.DirectBillRequest, error) {
	if err := validateHeader(in); err != nil {
		return nil, err
	}

	invoice := pkgebarimt.IsInvoice(in.Type)
	receipts := make([]entity.DirectReceipt, 0, len(in.Receipts))
	rootTotal := decimal.Zero
	rootVAT := decimal.Zero
	rootCity := decimal.Zero

	for i, r := range in.Receipts {
		if len(r.Items) == 0 {
			return nil, invalid("receipts[%d].items must not be empty", i)
		}
		items := make([]entity.DirectItem, 0, len(r.Items))
		sumTotal := decimal.Zero
		rawVAT := decimal.Zero
		rawCity := decimal.Zero

		for j, it := range r.Items {
			if err := validateItem(i, j, it); err != nil {
				return nil, err
			}
			tax := CalculateItemTax(it.TotalAmount, it.Qty, r.TaxType, it.IsNhat)
			vat, city := rawItemTax(it.TotalAmount, r.TaxType, it.IsNhat)
			rawVAT = rawVAT.Add(vat)
			rawCity = rawCity.Add(city)
			sumTotal = sumTotal.Add(tax.TotalAmount)
			items = append(items, p.directItem(it, tax))
		}

		receipt := entity.DirectReceipt{
			TotalAmount:   Round2(sumTotal),
			TotalVAT:      Round2(rawVAT),
			TotalCityTax:  Round2(rawCity),
			TaxType:       r.TaxType,
			MerchantTin:   r.MerchantTin,
			CustomerTin:   r.CustomerTin,
			BankAccountNo: r.BankAccountNo,
			Items:         items,
		}
		if receipt.MerchantTin == "" {
			receipt.MerchantTin = in.MerchantTin
		}
		receipts = append(receipts, receipt)

		rootTotal = rootTotal.Add(receipt.TotalAmount)
		rootVAT = rootVAT.Add(rawVAT)
		rootCity = rootCity.Add(rawCity)
	}

	out := &entity.DirectBillRequest{
		OrderID:      in.OrderID,
		TotalAmount:  Round2(rootTotal),
		TotalVAT:     Round2(rootVAT),
		TotalCityTax: Round2(rootCity),
		DistrictCode: in.DistrictCode,
		MerchantTin:  in.MerchantTin,
		PosNo:        in.PosNo,
		BranchNo:     in.BranchNo,
		BillIDSuffix: in.BillIDSuffix,
		CustomerTin:  in.CustomerTin,
		ConsumerNo:   in.ConsumerNo,
		Type:         in.Type,
		InactiveID:   in.InactiveID,
		ReportMonth:  in.ReportMonth,
		InvoiceID:    in.InvoiceID,
		Receipts:     receipts,
		Payments:     []entity.PaymentLine{},
	}

	if !invoice {
		pv := ValidatePayments(in.Payments, out.TotalAmount)
		if !pv.IsValid {
			return nil, domain.NewValidationError(pv.Message)
		}
		out.Payments = append(out.Payments, in.Payments...)
	}
	return out, nil
}

func (p BillProcessor) directItem(it entity.InputItem, tax TaxResult) entity.DirectItem {
	unit := it.MeasureUnit
	if strings.TrimSpace(unit) == "" {
		unit = p.cfg.DefaultMeasureUnit
	}
	class := it.ClassificationCode
	if class == "" {
		class = p.cfg.DefaultClassificationCode
	}
	taxCode := it.TaxProductCode
	if (taxCode == nil || *taxCode == "") && p.cfg.DefaultTaxProductCode != "" {
		c := p.cfg.DefaultTaxProductCode
		taxCode = &c
	}
	if taxCode != nil && *taxCode == "" {
		taxCode = nil
	}
	return entity.DirectItem{
		Name:               it.Name,
		BarCode:            it.BarCode,
		BarCodeType:        string(pkgebarimt.ClassifyBarcode(it.BarCode)),
		ClassificationCode: class,
		TaxProductCode:     taxCode,
		MeasureUnit:        unit,
		Qty:                it.Qty,
		UnitPrice:          tax.UnitPrice,
		TotalVAT:           tax.VAT,
		TotalCityTax:       tax.CityTax,
		TotalAmount:        tax.TotalAmount,
	}
}

func validateHeader(in entity.InputBillRequest) error {
	required := []struct{ name, value string }{
		{"orderId", in.OrderID},
		{"merchantTin", in.MerchantTin},
		{"posNo", in.PosNo},
		{"districtCode", in.DistrictCode},
		{"branchNo", in.BranchNo},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid("%s is required", f.name)
		}
	}
	if len(in.Receipts) == 0 {
		return invalid("receipts must not be empty")
	}
	if !pkgebarimt.IsInvoice(in.Type) && len(in.Payments) == 0 {
		return invalid("payments must not be empty")
	}
	if pkgebarimt.RequiresCustomerTin(in.Type) && strings.TrimSpace(in.CustomerTin) == "" {
		return invalid("customerTin is required for %s", in.Type)
	}
	return nil
}

func validateItem(i, j int, it entity.InputItem) error {
	if strings.TrimSpace(it.Name) == "" {
		return invalid("receipts[%d].items[%d].name is required", i, j)
	}
	if !it.Qty.IsPositive() {
		return invalid("receipts[%d].items[%d].qty must be greater than 0", i, j)
	}
	if !it.TotalAmount.IsPositive() {
		return invalid("receipts[%d].items[%d].totalAmount must be greater than 0", i, j)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return domain.NewValidationError(fmt.Sprintf(format, args...))
}
