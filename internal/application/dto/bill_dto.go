package dto

import "github.com/shopspring/decimal"

// BillItemRequest línea de venta del frontend POS; totalAmount incluye impuestos.
type BillItemRequest struct {
	Name               string          `json:"name"`
	BarCode            string          `json:"barCode,omitempty"`
	ClassificationCode string          `json:"classificationCode,omitempty"`
	MeasureUnit        string          `json:"measureUnit,omitempty"`
	Qty                decimal.Decimal `json:"qty"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	IsNhat             bool            `json:"isNhat"`
	TaxProductCode     *string         `json:"taxProductCode,omitempty"`
}

// BillReceiptRequest sub-recibo por clasificación de impuesto.
type BillReceiptRequest struct {
	TaxType       string            `json:"taxType" validate:"omitempty,ebarimt_taxtype"`
	MerchantTin   string            `json:"merchantTin,omitempty"`
	CustomerTin   string            `json:"customerTin,omitempty"`
	BankAccountNo string            `json:"bankAccountNo,omitempty"`
	Items         []BillItemRequest `json:"items" validate:"dive"`
}

// PaymentRequest línea de pago.
type PaymentRequest struct {
	Code       string          `json:"code" validate:"required,ebarimt_paycode"`
	Status     string          `json:"status" validate:"required,ebarimt_paystatus"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
}

// BillRequest body para POST /posapi/addBill, addBillInvoice, updateBill, updateBillInvoice y calculate.
// Los campos de cabecera vacíos se completan con la configuración POS del contribuyente.
type BillRequest struct {
	OrderID      string               `json:"orderId"`
	Type         string               `json:"type,omitempty" validate:"omitempty,ebarimt_doctype"`
	MerchantTin  string               `json:"merchantTin,omitempty"`
	PosNo        string               `json:"posNo,omitempty"`
	DistrictCode string               `json:"districtCode,omitempty"`
	BranchNo     string               `json:"branchNo,omitempty"`
	BillIDSuffix string               `json:"billIdSuffix,omitempty"`
	CustomerTin  string               `json:"customerTin,omitempty"`
	ConsumerNo   string               `json:"consumerNo,omitempty"`
	ReportMonth  *string              `json:"reportMonth,omitempty"`
	InvoiceID    *string              `json:"invoiceId,omitempty"`
	InactiveID   string               `json:"inactiveId,omitempty"`
	Force        bool                 `json:"force,omitempty"`
	Receipts     []BillReceiptRequest `json:"receipts" validate:"dive"`
	Payments     []PaymentRequest     `json:"payments" validate:"dive"`
}

// BillResponse resultado de un envío aceptado por el POS API.
type BillResponse struct {
	OrderID      string          `json:"orderId"`
	EbarimtID    string          `json:"id"`
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	Date         string          `json:"date,omitempty"`
	QRData       string          `json:"qrData,omitempty"`
	Lottery      string          `json:"lottery,omitempty"`
	InactiveID   string          `json:"inactiveId,omitempty"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TotalVAT     decimal.Decimal `json:"totalVAT"`
	TotalCityTax decimal.Decimal `json:"totalCityTax"`
}

// DeleteBillRequest body para POST /posapi/deleteBill.
type DeleteBillRequest struct {
	EbarimtID string `json:"ebarimtId" validate:"required"`
}

// DeleteBillResponse resultado de la anulación.
type DeleteBillResponse struct {
	OrderID   string `json:"orderId"`
	EbarimtID string `json:"ebarimtId"`
	Message   string `json:"message,omitempty"`
}

// SendDataResponse resultado del envío de documentos pendientes al servidor central.
type SendDataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
