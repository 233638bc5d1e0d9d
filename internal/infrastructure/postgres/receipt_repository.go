package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo registros de envío en pos_api_receipts (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

const receiptColumns = `id, order_id, merchant_tin, request, response, ebarimt_id,
	total_amount, total_vat, total_city_tax, receipt_type, success, error_message,
	response_status, response_message, response_date, qr_data, lottery, created_at, updated_at`

// Create reserva el registro del pedido. La restricción (order_id, merchant_tin) devuelve domain.ErrDuplicate.
func (r *ReceiptRepo) Create(ctx context.Context, rec *entity.ReceiptRecord) error {
	query := `
		INSERT INTO pos_api_receipts (order_id, merchant_tin, request, response, ebarimt_id,
			total_amount, total_vat, total_city_tax, receipt_type, success, error_message,
			response_status, response_message, response_date, qr_data, lottery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, r.args(rec)...).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: pedido %s ya registrado para %s", domain.ErrDuplicate, rec.OrderID, rec.MerchantTin)
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// Save inserta o actualiza el registro de (order_id, merchant_tin).
func (r *ReceiptRepo) Save(ctx context.Context, rec *entity.ReceiptRecord) error {
	query := `
		INSERT INTO pos_api_receipts (order_id, merchant_tin, request, response, ebarimt_id,
			total_amount, total_vat, total_city_tax, receipt_type, success, error_message,
			response_status, response_message, response_date, qr_data, lottery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (order_id, merchant_tin) DO UPDATE SET
			request          = EXCLUDED.request,
			response         = EXCLUDED.response,
			ebarimt_id       = EXCLUDED.ebarimt_id,
			total_amount     = EXCLUDED.total_amount,
			total_vat        = EXCLUDED.total_vat,
			total_city_tax   = EXCLUDED.total_city_tax,
			receipt_type     = EXCLUDED.receipt_type,
			success          = EXCLUDED.success,
			error_message    = EXCLUDED.error_message,
			response_status  = EXCLUDED.response_status,
			response_message = EXCLUDED.response_message,
			response_date    = EXCLUDED.response_date,
			qr_data          = EXCLUDED.qr_data,
			lottery          = EXCLUDED.lottery,
			updated_at       = now()
		RETURNING id, created_at, updated_at`
	if err := r.q.QueryRow(ctx, query, r.args(rec)...).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return fmt.Errorf("upsert receipt: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) args(rec *entity.ReceiptRecord) []any {
	return []any{
		rec.OrderID, rec.MerchantTin, nullJSON(rec.Request), nullJSON(rec.Response), nullIfEmpty(rec.EbarimtID),
		rec.TotalAmount, rec.TotalVAT, rec.TotalCityTax, rec.ReceiptType, rec.Success, nullIfEmpty(rec.ErrorMessage),
		nullIfEmpty(rec.ResponseStatus), nullIfEmpty(rec.ResponseMessage), rec.ResponseDate,
		nullIfEmpty(rec.QRData), nullIfEmpty(rec.Lottery),
	}
}

func (r *ReceiptRepo) FindByOrderIDAndTin(ctx context.Context, orderID, merchantTin string) (*entity.ReceiptRecord, error) {
	query := `SELECT ` + receiptColumns + ` FROM pos_api_receipts WHERE order_id = $1 AND merchant_tin = $2`
	return r.one(ctx, query, orderID, merchantTin)
}

func (r *ReceiptRepo) FindLatestByOrderID(ctx context.Context, orderID string) (*entity.ReceiptRecord, error) {
	query := `SELECT ` + receiptColumns + ` FROM pos_api_receipts WHERE order_id = $1 ORDER BY updated_at DESC, id DESC LIMIT 1`
	return r.one(ctx, query, orderID)
}

func (r *ReceiptRepo) FindByEbarimtID(ctx context.Context, ebarimtID string) (*entity.ReceiptRecord, error) {
	query := `SELECT ` + receiptColumns + ` FROM pos_api_receipts WHERE ebarimt_id = $1 ORDER BY id DESC LIMIT 1`
	return r.one(ctx, query, ebarimtID)
}

// List registros más recientes primero con el total sin paginar.
func (r *ReceiptRepo) List(ctx context.Context, f entity.ReceiptFilter) ([]*entity.ReceiptRecord, int, error) {
	var (
		where []string
		args  []any
	)
	if f.OrderID != "" {
		args = append(args, f.OrderID)
		where = append(where, fmt.Sprintf("order_id = $%d", len(args)))
	}
	switch f.Status {
	case "success":
		where = append(where, "success = TRUE")
	case "failed":
		where = append(where, "success = FALSE")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM pos_api_receipts`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count receipts: %w", err)
	}

	limit, offset := clampPage(f.Limit, f.Offset)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM pos_api_receipts%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		receiptColumns, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.ReceiptRecord, 0)
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list receipts: %w", err)
	}
	return out, total, nil
}

func (r *ReceiptRepo) one(ctx context.Context, query string, args ...any) (*entity.ReceiptRecord, error) {
	rec, err := scanReceipt(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return rec, nil
}

func scanReceipt(row pgx.Row) (*entity.ReceiptRecord, error) {
	var (
		rec                                    entity.ReceiptRecord
		ebarimtID, errMsg, status, msg, qr, lt *string
	)
	err := row.Scan(
		&rec.ID, &rec.OrderID, &rec.MerchantTin, &rec.Request, &rec.Response, &ebarimtID,
		&rec.TotalAmount, &rec.TotalVAT, &rec.TotalCityTax, &rec.ReceiptType, &rec.Success, &errMsg,
		&status, &msg, &rec.ResponseDate, &qr, &lt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.EbarimtID = derefStr(ebarimtID)
	rec.ErrorMessage = derefStr(errMsg)
	rec.ResponseStatus = derefStr(status)
	rec.ResponseMessage = derefStr(msg)
	rec.QRData = derefStr(qr)
	rec.Lottery = derefStr(lt)
	return &rec, nil
}
