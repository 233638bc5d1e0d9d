package entity

import "github.com/shopspring/decimal"

// InputItem línea de venta tal como la envía el frontend POS.
// TotalAmount incluye IVA e impuesto de ciudad.
type InputItem struct {
	Name               string
	BarCode            string
	ClassificationCode string
	MeasureUnit        string
	Qty                decimal.Decimal
	TotalAmount        decimal.Decimal
	IsNhat             bool // aplica impuesto de ciudad (NHAT)
	TaxProductCode     *string
}

// InputReceipt sub-recibo con una clasificación de impuesto común a sus ítems.
type InputReceipt struct {
	TaxType       string
	MerchantTin   string
	CustomerTin   string
	BankAccountNo string
	Items         []InputItem
}

// PaymentLine línea de pago; solo status PAID cuenta para la conciliación.
type PaymentLine struct {
	Code       string          `json:"code"`
	Status     string          `json:"status"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
}

// InputBillRequest pedido de emisión ya tipado (salida del paso de parseo).
type InputBillRequest struct {
	OrderID      string
	Type         string
	MerchantTin  string
	PosNo        string
	DistrictCode string
	BranchNo     string
	BillIDSuffix string
	CustomerTin  string
	ConsumerNo   string
	ReportMonth  *string
	InvoiceID    *string
	InactiveID   string
	Force        bool
	Receipts     []InputReceipt
	Payments     []PaymentLine
}

// DirectItem ítem normalizado con impuestos calculados.
type DirectItem struct {
	Name               string          `json:"name"`
	BarCode            string          `json:"barCode"`
	BarCodeType        string          `json:"barCodeType"`
	ClassificationCode string          `json:"classificationCode"`
	TaxProductCode     *string         `json:"taxProductCode"`
	MeasureUnit        string          `json:"measureUnit"`
	Qty                decimal.Decimal `json:"qty"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TotalVAT           decimal.Decimal `json:"totalVAT"`
	TotalCityTax       decimal.Decimal `json:"totalCityTax"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
}

// DirectReceipt sub-recibo normalizado.
type DirectReceipt struct {
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalVAT      decimal.Decimal `json:"totalVAT"`
	TotalCityTax  decimal.Decimal `json:"totalCityTax"`
	TaxType       string          `json:"taxType"`
	MerchantTin   string          `json:"merchantTin"`
	CustomerTin   string          `json:"customerTin,omitempty"`
	BankAccountNo string          `json:"bankAccountNo,omitempty"`
	Items         []DirectItem    `json:"items"`
}

// DirectBillRequest documento fiscal canónico listo para el POS API.
// OrderID es solo interno; el cliente del POS API no lo transmite.
type DirectBillRequest struct {
	OrderID      string          `json:"orderId"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TotalVAT     decimal.Decimal `json:"totalVAT"`
	TotalCityTax decimal.Decimal `json:"totalCityTax"`
	DistrictCode string          `json:"districtCode"`
	MerchantTin  string          `json:"merchantTin"`
	PosNo        string          `json:"posNo"`
	BranchNo     string          `json:"branchNo"`
	BillIDSuffix string          `json:"billIdSuffix"`
	CustomerTin  string          `json:"customerTin,omitempty"`
	ConsumerNo   string          `json:"consumerNo,omitempty"`
	Type         string          `json:"type"`
	InactiveID   string          `json:"inactiveId,omitempty"`
	ReportMonth  *string         `json:"reportMonth"`
	InvoiceID    *string         `json:"invoiceId,omitempty"`
	Receipts     []DirectReceipt `json:"receipts"`
	Payments     []PaymentLine   `json:"payments"`
}
