// Package posapi cliente HTTP del POS API local (PosAPI 3.0) que firma y emite los recibos ebarimt.
package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

var _ billing.FiscalClient = (*Client)(nil)

const (
	receiptPath  = "/rest/receipt"
	sendDataPath = "/rest/sendData"
	infoPath     = "/rest/info"

	maxBody = 1 << 20
)

// Client implementa billing.FiscalClient sobre net/http.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
	log        zerolog.Logger
}

// NewClient construye el cliente. Las fechas del POS API se interpretan en hora local.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		loc:        time.Local,
		log:        log,
	}
}

// WithLocation zona horaria de las fechas del POS API.
func (c *Client) WithLocation(loc *time.Location) *Client {
	c.loc = loc
	return c
}

// ── Estructuras de envío ───────────────────────────────────────────────────────

// El POS API espera números JSON; orderId no forma parte del documento.
type wireItem struct {
	Name               string  `json:"name"`
	BarCode            string  `json:"barCode"`
	BarCodeType        string  `json:"barCodeType"`
	ClassificationCode string  `json:"classificationCode"`
	TaxProductCode     *string `json:"taxProductCode"`
	MeasureUnit        string  `json:"measureUnit"`
	Qty                float64 `json:"qty"`
	UnitPrice          float64 `json:"unitPrice"`
	TotalVAT           float64 `json:"totalVAT"`
	TotalCityTax       float64 `json:"totalCityTax"`
	TotalAmount        float64 `json:"totalAmount"`
}

type wireReceipt struct {
	TotalAmount   float64    `json:"totalAmount"`
	TotalVAT      float64    `json:"totalVAT"`
	TotalCityTax  float64    `json:"totalCityTax"`
	TaxType       string     `json:"taxType"`
	MerchantTin   string     `json:"merchantTin"`
	CustomerTin   string     `json:"customerTin,omitempty"`
	BankAccountNo string     `json:"bankAccountNo,omitempty"`
	Items         []wireItem `json:"items"`
}

type wirePayment struct {
	Code       string  `json:"code"`
	Status     string  `json:"status"`
	PaidAmount float64 `json:"paidAmount"`
}

type wireBill struct {
	TotalAmount  float64       `json:"totalAmount"`
	TotalVAT     float64       `json:"totalVAT"`
	TotalCityTax float64       `json:"totalCityTax"`
	DistrictCode string        `json:"districtCode"`
	MerchantTin  string        `json:"merchantTin"`
	PosNo        string        `json:"posNo"`
	BranchNo     string        `json:"branchNo"`
	BillIDSuffix string        `json:"billIdSuffix"`
	CustomerTin  string        `json:"customerTin,omitempty"`
	ConsumerNo   string        `json:"consumerNo,omitempty"`
	Type         string        `json:"type"`
	InactiveID   string        `json:"inactiveId,omitempty"`
	ReportMonth  *string       `json:"reportMonth"`
	InvoiceID    *string       `json:"invoiceId,omitempty"`
	Receipts     []wireReceipt `json:"receipts"`
	Payments     []wirePayment `json:"payments"`
}

type wireDelete struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

// receiptResponse respuesta de POST /rest/receipt (solo los campos que se usan).
type receiptResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Date    string `json:"date"`
	QRData  string `json:"qrData"`
	Lottery string `json:"lottery"`
}

func toWire(doc *entity.DirectBillRequest) wireBill {
	w := wireBill{
		TotalAmount:  doc.TotalAmount.InexactFloat64(),
		TotalVAT:     doc.TotalVAT.InexactFloat64(),
		TotalCityTax: doc.TotalCityTax.InexactFloat64(),
		DistrictCode: doc.DistrictCode,
		MerchantTin:  doc.MerchantTin,
		PosNo:        doc.PosNo,
		BranchNo:     doc.BranchNo,
		BillIDSuffix: doc.BillIDSuffix,
		CustomerTin:  doc.CustomerTin,
		ConsumerNo:   doc.ConsumerNo,
		Type:         doc.Type,
		InactiveID:   doc.InactiveID,
		ReportMonth:  doc.ReportMonth,
		InvoiceID:    doc.InvoiceID,
		Receipts:     make([]wireReceipt, 0, len(doc.Receipts)),
		Payments:     make([]wirePayment, 0, len(doc.Payments)),
	}
	for _, r := range doc.Receipts {
		wr := wireReceipt{
			TotalAmount:   r.TotalAmount.InexactFloat64(),
			TotalVAT:      r.TotalVAT.InexactFloat64(),
			TotalCityTax:  r.TotalCityTax.InexactFloat64(),
			TaxType:       r.TaxType,
			MerchantTin:   r.MerchantTin,
			CustomerTin:   r.CustomerTin,
			BankAccountNo: r.BankAccountNo,
			Items:         make([]wireItem, 0, len(r.Items)),
		}
		for _, it := range r.Items {
			wr.Items = append(wr.Items, wireItem{
				Name:               it.Name,
				BarCode:            it.BarCode,
				BarCodeType:        it.BarCodeType,
				ClassificationCode: it.ClassificationCode,
				TaxProductCode:     it.TaxProductCode,
				MeasureUnit:        it.MeasureUnit,
				Qty:                it.Qty.InexactFloat64(),
				UnitPrice:          it.UnitPrice.InexactFloat64(),
				TotalVAT:           it.TotalVAT.InexactFloat64(),
				TotalCityTax:       it.TotalCityTax.InexactFloat64(),
				TotalAmount:        it.TotalAmount.InexactFloat64(),
			})
		}
		w.Receipts = append(w.Receipts, wr)
	}
	for _, p := range doc.Payments {
		w.Payments = append(w.Payments, wirePayment{Code: p.Code, Status: p.Status, PaidAmount: p.PaidAmount.InexactFloat64()})
	}
	return w
}

// ── Operaciones ────────────────────────────────────────────────────────────────

// Submit envía el documento. Un HTTP no-2xx con cuerpo JSON es un rechazo (Success=false);
// un fallo de red o un cuerpo ilegible es error de transporte.
func (c *Client) Submit(ctx context.Context, doc *entity.DirectBillRequest) (*billing.SubmitResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, receiptPath, toWire(doc))
	if err != nil {
		return nil, err
	}

	var resp receiptResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if status >= 300 {
			return nil, fmt.Errorf("posapi: HTTP %d: %s", status, truncate(body))
		}
		return nil, fmt.Errorf("posapi: decodificar respuesta: %w", err)
	}

	res := &billing.SubmitResult{
		Success:   status < 300,
		EbarimtID: resp.ID,
		Status:    resp.Status,
		Message:   resp.Message,
		QRData:    resp.QRData,
		Lottery:   resp.Lottery,
		Raw:       json.RawMessage(body),
	}
	if status >= 300 {
		if res.Status == "" {
			res.Status = pkgebarimt.ResponseStatusError
		}
		if res.Message == "" {
			res.Message = fmt.Sprintf("HTTP %d", status)
		}
	}
	if resp.Date != "" {
		if t, err := time.ParseInLocation(billing.DateLayout, resp.Date, c.loc); err == nil {
			res.Date = &t
		} else {
			c.log.Warn().Str("date", resp.Date).Msg("fecha del POS API con formato desconocido")
		}
	}
	c.log.Debug().Str("order_id", doc.OrderID).Int("http_status", status).Str("status", res.Status).Msg("posapi receipt")
	return res, nil
}

// Cancel anula el recibo id emitido en asOf.
func (c *Client) Cancel(ctx context.Context, ebarimtID string, asOf time.Time) (*billing.CancelResult, error) {
	payload := wireDelete{ID: ebarimtID, Date: asOf.In(c.loc).Format(billing.DateLayout)}
	status, body, err := c.do(ctx, http.MethodDelete, receiptPath, payload)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return &billing.CancelResult{Success: false, Message: fmt.Sprintf("HTTP %d: %s", status, truncate(body))}, nil
	}
	return &billing.CancelResult{Success: true, Message: "Bill deleted successfully"}, nil
}

// SendData pide al POS API enviar al servidor central los documentos pendientes.
func (c *Client) SendData(ctx context.Context) (*billing.SendDataResult, error) {
	status, body, err := c.do(ctx, http.MethodGet, sendDataPath, nil)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return &billing.SendDataResult{Success: false, Message: fmt.Sprintf("HTTP %d: %s", status, truncate(body))}, nil
	}
	return &billing.SendDataResult{Success: true, Message: "Data sent successfully", Raw: asJSON(body)}, nil
}

// Info estado del POS API local (operador, pendientes, último envío).
func (c *Client) Info(ctx context.Context) (json.RawMessage, error) {
	status, body, err := c.do(ctx, http.MethodGet, infoPath, nil)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("posapi: info HTTP %d: %s", status, truncate(body))
	}
	return asJSON(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("posapi: serializar: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("posapi: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("posapi: timeout o cancelación: %w", ctx.Err())
		}
		return 0, nil, fmt.Errorf("posapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, fmt.Errorf("posapi: leer respuesta: %w", err)
	}
	return resp.StatusCode, body, nil
}

// asJSON devuelve body si es JSON válido; si no, lo envuelve como string JSON.
func asJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	b, _ := json.Marshal(string(trimmed))
	return b
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
