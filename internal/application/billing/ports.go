package billing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
)

// FiscalClient puerto hacia el POS API local que emite los recibos ebarimt.
// Un error indica fallo de transporte; un rechazo del POS API llega como resultado con Success=false.
type FiscalClient interface {
	Submit(ctx context.Context, doc *entity.DirectBillRequest) (*SubmitResult, error)
	Cancel(ctx context.Context, ebarimtID string, asOf time.Time) (*CancelResult, error)
	SendData(ctx context.Context) (*SendDataResult, error)
	Info(ctx context.Context) (json.RawMessage, error)
}

// SubmitResult respuesta del POS API a un envío.
type SubmitResult struct {
	Success   bool
	EbarimtID string
	Status    string // SUCCESS, ERROR, PAYMENT
	Message   string
	Date      *time.Time
	QRData    string
	Lottery   string
	Raw       json.RawMessage
}

// CancelResult respuesta del POS API a una anulación.
type CancelResult struct {
	Success bool
	Message string
}

// SendDataResult respuesta del POS API al envío de pendientes.
type SendDataResult struct {
	Success bool
	Message string
	Raw     json.RawMessage
}

// ReceiptTxRunner ejecuta fn dentro de una transacción con los repos de recibos y reemplazos.
type ReceiptTxRunner interface {
	RunReceipt(ctx context.Context, fn func(
		receiptRepo repository.ReceiptRepository,
		updateRepo repository.UpdateLogRepository,
	) error) error
}

// OrderLocker exclusión mutua por pedido alrededor de verificar-duplicado y reservar.
type OrderLocker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// NoopLocker ejecuta fn sin bloqueo (sin Redis la restricción única de la BD sigue protegiendo).
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

// BillObserver métricas del ciclo de vida de los recibos.
type BillObserver interface {
	BillSubmitted(docType, outcome string, elapsed time.Duration)
	BillRejected(reason string)
	BillCancelled(outcome string)
}

// NoopObserver descarta las métricas.
type NoopObserver struct{}

func (NoopObserver) BillSubmitted(string, string, time.Duration) {}
func (NoopObserver) BillRejected(string)                         {}
func (NoopObserver) BillCancelled(string)                        {}

// ReceiptPDFGenerator representación gráfica del recibo emitido.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, rec *entity.ReceiptRecord, doc *entity.DirectBillRequest) ([]byte, error)
}

// TaxpayerDirectory consultas públicas de ebarimt (TIN, sucursales, códigos de producto).
// Devuelve el campo data de la respuesta sin interpretar.
type TaxpayerDirectory interface {
	TinByRegNo(ctx context.Context, regNo string) (json.RawMessage, error)
	TinInfo(ctx context.Context, tin string) (json.RawMessage, error)
	Branches(ctx context.Context) (json.RawMessage, error)
	ProductTaxCodes(ctx context.Context) (json.RawMessage, error)
}

// InfoCache caché de respuestas del directorio. El bool indica acierto.
type InfoCache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error
}

// NoopInfoCache nunca acierta.
type NoopInfoCache struct{}

func (NoopInfoCache) Get(context.Context, string) (json.RawMessage, bool, error) {
	return nil, false, nil
}

func (NoopInfoCache) Set(context.Context, string, json.RawMessage, time.Duration) error {
	return nil
}
