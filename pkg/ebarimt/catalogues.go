// Package ebarimt contiene catálogos y validaciones del sistema de recibos
// fiscales ebarimt (Mongolia) usados por el POS API local.
package ebarimt

import "sort"

// =============================================================================
// Tipos de documento
// B2C/B2B según el comprador; RECEIPT se paga en el acto, INVOICE queda por cobrar.
// =============================================================================

const (
	DocumentB2CReceipt = "B2C_RECEIPT" // Recibo a consumidor final
	DocumentB2BReceipt = "B2B_RECEIPT" // Recibo a persona jurídica (requiere customerTin)
	DocumentB2CInvoice = "B2C_INVOICE" // Factura a consumidor final
	DocumentB2BInvoice = "B2B_INVOICE" // Factura a persona jurídica (requiere customerTin)
)

// ValidDocumentTypes tipos de documento aceptados por el POS API.
var ValidDocumentTypes = map[string]bool{
	DocumentB2CReceipt: true,
	DocumentB2BReceipt: true,
	DocumentB2CInvoice: true,
	DocumentB2BInvoice: true,
}

// IsInvoice indica si el documento es una factura (sin líneas de pago).
func IsInvoice(docType string) bool {
	return docType == DocumentB2CInvoice || docType == DocumentB2BInvoice
}

// RequiresCustomerTin indica si el tipo de documento exige TIN del comprador.
func RequiresCustomerTin(docType string) bool {
	return docType == DocumentB2BReceipt || docType == DocumentB2BInvoice
}

// =============================================================================
// Tipos de impuesto por recibo
// Solo VAT_ABLE genera IVA; el resto se trata como no gravado.
// =============================================================================

const (
	TaxVATAble = "VAT_ABLE"
	TaxVATFree = "VAT_FREE"
	TaxVATZero = "VAT_ZERO"
	TaxNoVAT   = "NO_VAT"
)

// ValidTaxTypes tipos de impuesto aceptados.
var ValidTaxTypes = map[string]bool{
	TaxVATAble: true, TaxVATFree: true, TaxVATZero: true, TaxNoVAT: true,
}

// IsTaxable solo VAT_ABLE es gravado; cualquier otro valor (incluso desconocido) no lo es.
func IsTaxable(taxType string) bool {
	return taxType == TaxVATAble
}

// =============================================================================
// Pagos
// =============================================================================

const (
	PaymentCash          = "CASH"
	PaymentCard          = "PAYMENT_CARD"
	PaymentBonusCardTest = "BONUS_CARD_TEST"
	PaymentEMD           = "EMD"
	PaymentBankTransfer  = "BANK_TRANSFER"
)

const (
	PaymentStatusPaid     = "PAID"
	PaymentStatusPay      = "PAY"
	PaymentStatusReversed = "REVERSED"
	PaymentStatusError    = "ERROR"
)

// ValidPaymentCodes códigos de medio de pago.
var ValidPaymentCodes = map[string]bool{
	PaymentCash: true, PaymentCard: true, PaymentBonusCardTest: true,
	PaymentEMD: true, PaymentBankTransfer: true,
}

// ValidPaymentStatuses estados de línea de pago.
var ValidPaymentStatuses = map[string]bool{
	PaymentStatusPaid: true, PaymentStatusPay: true,
	PaymentStatusReversed: true, PaymentStatusError: true,
}

// IsValidPaymentCode verifica el código de medio de pago.
func IsValidPaymentCode(code string) bool { return ValidPaymentCodes[code] }

// IsValidPaymentStatus verifica el estado de la línea de pago.
func IsValidPaymentStatus(status string) bool { return ValidPaymentStatuses[status] }

// Catalogues catálogos por nombre de regla de validación (tags `validate:"..."`).
var Catalogues = map[string]map[string]bool{
	"ebarimt_doctype":   ValidDocumentTypes,
	"ebarimt_taxtype":   ValidTaxTypes,
	"ebarimt_paycode":   ValidPaymentCodes,
	"ebarimt_paystatus": ValidPaymentStatuses,
}

// CatalogueValues valores del catálogo en orden alfabético.
func CatalogueValues(catalogue map[string]bool) []string {
	out := make([]string, 0, len(catalogue))
	for v := range catalogue {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// Estados de respuesta del POS API
// =============================================================================

const (
	ResponseStatusSuccess = "SUCCESS"
	ResponseStatusError   = "ERROR"
	ResponseStatusPayment = "PAYMENT"
)

// =============================================================================
// Valores por defecto
// =============================================================================

const (
	DefaultMeasureUnit  = "ш" // pieza
	DefaultBillIDSuffix = "01"

	// DefaultClassificationCode código GS1 de clasificación de producto usado
	// cuando el ítem no trae uno.
	DefaultClassificationCode = "2349010"
)
