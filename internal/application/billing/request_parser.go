package billing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/itsystem/posapi-bridge/internal/application/dto"
	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

// HeaderDefaults cabecera POS por defecto (variables de entorno) cuando no hay configuración guardada.
type HeaderDefaults struct {
	MerchantTin  string
	PosNo        string
	DistrictCode string
	BranchNo     string
	BillIDSuffix string
}

// RequestParser convierte el body JSON ya decodificado en un entity.InputBillRequest tipado:
// valida enumeraciones, completa la cabecera y resuelve el tipo de documento.
// Los campos obligatorios los valida el procesador para conservar su orden y mensajes.
type RequestParser struct {
	validate *validator.Validate
	settings repository.PosSettingsRepository
	defaults HeaderDefaults
}

// NewRequestParser construye el parser. settings puede ser nil.
func NewRequestParser(settings repository.PosSettingsRepository, defaults HeaderDefaults) *RequestParser {
	return &RequestParser{
		validate: NewValidator(),
		settings: settings,
		defaults: defaults,
	}
}

// NewValidator validator con nombres de campo JSON en las rutas de error.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, catalogue := range pkgebarimt.Catalogues {
		catalogue := catalogue
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return catalogue[fl.Field().String()]
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// ValidateStruct valida s y devuelve el primer fallo como *domain.ValidationError.
func ValidateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError(err.Error())
	}
	fe := verrs[0]
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	if catalogue, ok := pkgebarimt.Catalogues[fe.Tag()]; ok {
		return domain.NewValidationError(fmt.Sprintf("%s must be one of [%s]", path,
			strings.Join(pkgebarimt.CatalogueValues(catalogue), " ")))
	}
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(path + " is required")
	case "oneof":
		return domain.NewValidationError(fmt.Sprintf("%s must be one of [%s]", path, fe.Param()))
	case "min", "max":
		return domain.NewValidationError(fmt.Sprintf("%s must satisfy %s=%s", path, fe.Tag(), fe.Param()))
	}
	return domain.NewValidationError(fmt.Sprintf("%s is invalid", path))
}

// Parse prepara un recibo (B2C/B2B_RECEIPT o el tipo indicado).
func (p *RequestParser) Parse(ctx context.Context, req dto.BillRequest) (entity.InputBillRequest, error) {
	return p.parse(ctx, req, false)
}

// ParseInvoice prepara una factura: el tipo se fuerza a B2B_INVOICE con customerTin o B2C_INVOICE sin él.
func (p *RequestParser) ParseInvoice(ctx context.Context, req dto.BillRequest) (entity.InputBillRequest, error) {
	return p.parse(ctx, req, true)
}

func (p *RequestParser) parse(ctx context.Context, req dto.BillRequest, invoice bool) (entity.InputBillRequest, error) {
	if err := ValidateStruct(p.validate, req); err != nil {
		return entity.InputBillRequest{}, err
	}

	header, err := p.resolveHeader(ctx, req)
	if err != nil {
		return entity.InputBillRequest{}, err
	}

	in := entity.InputBillRequest{
		OrderID:      strings.TrimSpace(req.OrderID),
		Type:         documentType(req.Type, req.CustomerTin, invoice),
		MerchantTin:  header.MerchantTin,
		PosNo:        header.PosNo,
		DistrictCode: header.DistrictCode,
		BranchNo:     header.BranchNo,
		BillIDSuffix: header.BillIDSuffix,
		CustomerTin:  req.CustomerTin,
		ConsumerNo:   req.ConsumerNo,
		ReportMonth:  req.ReportMonth,
		InvoiceID:    req.InvoiceID,
		InactiveID:   req.InactiveID,
		Force:        req.Force,
		Receipts:     make([]entity.InputReceipt, 0, len(req.Receipts)),
		Payments:     make([]entity.PaymentLine, 0, len(req.Payments)),
	}
	for _, r := range req.Receipts {
		receipt := entity.InputReceipt{
			TaxType:       r.TaxType,
			MerchantTin:   r.MerchantTin,
			CustomerTin:   r.CustomerTin,
			BankAccountNo: r.BankAccountNo,
			Items:         make([]entity.InputItem, 0, len(r.Items)),
		}
		for _, it := range r.Items {
			receipt.Items = append(receipt.Items, entity.InputItem{
				Name:               strings.TrimSpace(it.Name),
				BarCode:            it.BarCode,
				ClassificationCode: it.ClassificationCode,
				MeasureUnit:        it.MeasureUnit,
				Qty:                it.Qty,
				TotalAmount:        it.TotalAmount,
				IsNhat:             it.IsNhat,
				TaxProductCode:     it.TaxProductCode,
			})
		}
		in.Receipts = append(in.Receipts, receipt)
	}
	for _, pay := range req.Payments {
		in.Payments = append(in.Payments, entity.PaymentLine{
			Code:       pay.Code,
			Status:     pay.Status,
			PaidAmount: pay.PaidAmount,
		})
	}
	return in, nil
}

// resolveHeader cada campo vacío se toma de la configuración POS del contribuyente y luego del entorno.
func (p *RequestParser) resolveHeader(ctx context.Context, req dto.BillRequest) (HeaderDefaults, error) {
	h := HeaderDefaults{
		MerchantTin:  req.MerchantTin,
		PosNo:        req.PosNo,
		DistrictCode: req.DistrictCode,
		BranchNo:     req.BranchNo,
		BillIDSuffix: req.BillIDSuffix,
	}

	var stored *entity.PosSettings
	if p.settings != nil {
		var err error
		tin := firstNonEmpty(h.MerchantTin, p.defaults.MerchantTin)
		if tin != "" {
			stored, err = p.settings.GetByMerchantTin(ctx, tin)
		} else {
			stored, err = p.settings.GetLatest(ctx)
		}
		if err != nil {
			return h, fmt.Errorf("obtener configuración POS: %w", err)
		}
	}
	if stored == nil {
		stored = &entity.PosSettings{}
	}

	h.MerchantTin = firstNonEmpty(h.MerchantTin, stored.MerchantTin, p.defaults.MerchantTin)
	h.PosNo = firstNonEmpty(h.PosNo, stored.PosNo, p.defaults.PosNo)
	h.DistrictCode = firstNonEmpty(h.DistrictCode, stored.DistrictCode, p.defaults.DistrictCode)
	h.BranchNo = firstNonEmpty(h.BranchNo, stored.BranchNo, p.defaults.BranchNo)
	h.BillIDSuffix = firstNonEmpty(h.BillIDSuffix, stored.BillIDSuffix, p.defaults.BillIDSuffix, pkgebarimt.DefaultBillIDSuffix)
	return h, nil
}

func documentType(requested, customerTin string, invoice bool) string {
	b2b := strings.TrimSpace(customerTin) != ""
	if invoice {
		if b2b {
			return pkgebarimt.DocumentB2BInvoice
		}
		return pkgebarimt.DocumentB2CInvoice
	}
	if requested != "" {
		return requested
	}
	if b2b {
		return pkgebarimt.DocumentB2BReceipt
	}
	return pkgebarimt.DocumentB2CReceipt
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
