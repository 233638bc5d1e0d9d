package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptRecord registro persistido de un envío al POS API, único por (OrderID, MerchantTin).
// Se reserva antes de transmitir (Success=false, ResponseStatus vacío) y se actualiza con la respuesta.
type ReceiptRecord struct {
	ID              int64
	OrderID         string
	MerchantTin     string
	Request         json.RawMessage // DirectBillRequest enviado
	Response        json.RawMessage // respuesta cruda del POS API
	EbarimtID       string          // id externo devuelto por el POS API
	TotalAmount     decimal.Decimal
	TotalVAT        decimal.Decimal
	TotalCityTax    decimal.Decimal
	ReceiptType     string
	Success         bool
	ErrorMessage    string
	ResponseStatus  string // SUCCESS, ERROR, PAYMENT
	ResponseMessage string
	ResponseDate    *time.Time
	QRData          string
	Lottery         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReceiptFilter filtros para listar registros de respuesta.
type ReceiptFilter struct {
	OrderID string
	Status  string // success | failed | vacío
	Limit   int
	Offset  int
}

// ReturnLog anulación (DELETE) de un recibo emitido.
type ReturnLog struct {
	ID         int64
	OrderID    string
	EbarimtID  string
	ReturnDate time.Time
	Success    bool
	Message    string
	CreatedAt  time.Time
}

// UpdateLog enlace entre el recibo reemplazado y el nuevo (inactiveId -> id).
type UpdateLog struct {
	ID        int64
	OrderID   string
	OldID     string
	NewID     string
	CreatedAt time.Time
}

// PosSettings configuración de cabecera del POS por contribuyente.
type PosSettings struct {
	MerchantTin  string
	PosNo        string
	DistrictCode string
	BranchNo     string
	BillIDSuffix string
	UpdatedAt    time.Time
}
