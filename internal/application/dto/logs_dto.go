package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLogQuery filtros de GET /posapi/response-logs.
type ReceiptLogQuery struct {
	PageRequest
	OrderID string `query:"orderId"`
	Status  string `query:"status" validate:"omitempty,oneof=success failed"`
}

// ReceiptLogResponse registro de envío al POS API.
type ReceiptLogResponse struct {
	OrderID         string          `json:"orderId"`
	MerchantTin     string          `json:"merchantTin"`
	EbarimtID       string          `json:"ebarimtId,omitempty"`
	ReceiptType     string          `json:"receiptType"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TotalVAT        decimal.Decimal `json:"totalVAT"`
	TotalCityTax    decimal.Decimal `json:"totalCityTax"`
	Success         bool            `json:"success"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	ResponseStatus  string          `json:"responseStatus,omitempty"`
	ResponseMessage string          `json:"responseMessage,omitempty"`
	ResponseDate    *time.Time      `json:"responseDate,omitempty"`
	Lottery         string          `json:"lottery,omitempty"`
	Request         json.RawMessage `json:"request,omitempty"`
	Response        json.RawMessage `json:"response,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ReceiptLogList página de registros de envío.
type ReceiptLogList struct {
	Items []ReceiptLogResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// OrderLogQuery filtros de GET /posapi/returns y /posapi/updates.
type OrderLogQuery struct {
	PageRequest
	OrderID string `query:"orderId"`
}

// ReturnLogResponse anulación registrada.
type ReturnLogResponse struct {
	OrderID    string    `json:"orderId"`
	EbarimtID  string    `json:"ebarimtId"`
	ReturnDate time.Time `json:"returnDate"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
}

// ReturnLogList página de anulaciones.
type ReturnLogList struct {
	Items []ReturnLogResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// UpdateLogResponse reemplazo registrado (oldId -> newId).
type UpdateLogResponse struct {
	OrderID   string    `json:"orderId"`
	OldID     string    `json:"oldId"`
	NewID     string    `json:"newId"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateLogList página de reemplazos.
type UpdateLogList struct {
	Items []UpdateLogResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
