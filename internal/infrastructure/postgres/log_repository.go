package postgres

import (
	"context"
	"fmt"

	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
)

var (
	_ repository.ReturnLogRepository = (*ReturnLogRepo)(nil)
	_ repository.UpdateLogRepository = (*UpdateLogRepo)(nil)
)

// ReturnLogRepo anulaciones en pos_api_return_logs.
type ReturnLogRepo struct {
	q Querier
}

// NewReturnLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnLogRepository(q Querier) *ReturnLogRepo {
	return &ReturnLogRepo{q: q}
}

func (r *ReturnLogRepo) Create(ctx context.Context, l *entity.ReturnLog) error {
	query := `
		INSERT INTO pos_api_return_logs (order_id, ebarimt_id, return_date, success, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, l.OrderID, l.EbarimtID, l.ReturnDate, l.Success, nullIfEmpty(l.Message)).
		Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert return log: %w", err)
	}
	return nil
}

func (r *ReturnLogRepo) List(ctx context.Context, orderID string, limit, offset int) ([]*entity.ReturnLog, int, error) {
	limit, offset = clampPage(limit, offset)

	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM pos_api_return_logs WHERE ($1 = '' OR order_id = $1)`, orderID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count return logs: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, ebarimt_id, return_date, success, message, created_at
		FROM pos_api_return_logs
		WHERE ($1 = '' OR order_id = $1)
		ORDER BY id DESC LIMIT $2 OFFSET $3`, orderID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list return logs: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.ReturnLog, 0)
	for rows.Next() {
		var (
			l   entity.ReturnLog
			msg *string
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.EbarimtID, &l.ReturnDate, &l.Success, &msg, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan return log: %w", err)
		}
		l.Message = derefStr(msg)
		out = append(out, &l)
	}
	return out, total, rows.Err()
}

// UpdateLogRepo reemplazos en pos_api_update_logs.
type UpdateLogRepo struct {
	q Querier
}

// NewUpdateLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUpdateLogRepository(q Querier) *UpdateLogRepo {
	return &UpdateLogRepo{q: q}
}

// Create registra el enlace old -> new; repetirlo no crea filas nuevas.
func (r *UpdateLogRepo) Create(ctx context.Context, l *entity.UpdateLog) error {
	query := `
		INSERT INTO pos_api_update_logs (order_id, old_id, new_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, old_id, new_id) DO UPDATE SET order_id = EXCLUDED.order_id
		RETURNING id, created_at`
	if err := r.q.QueryRow(ctx, query, l.OrderID, l.OldID, l.NewID).Scan(&l.ID, &l.CreatedAt); err != nil {
		return fmt.Errorf("insert update log: %w", err)
	}
	return nil
}

func (r *UpdateLogRepo) List(ctx context.Context, orderID string, limit, offset int) ([]*entity.UpdateLog, int, error) {
	limit, offset = clampPage(limit, offset)

	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM pos_api_update_logs WHERE ($1 = '' OR order_id = $1)`, orderID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count update logs: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, old_id, new_id, created_at
		FROM pos_api_update_logs
		WHERE ($1 = '' OR order_id = $1)
		ORDER BY id DESC LIMIT $2 OFFSET $3`, orderID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list update logs: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.UpdateLog, 0)
	for rows.Next() {
		var l entity.UpdateLog
		if err := rows.Scan(&l.ID, &l.OrderID, &l.OldID, &l.NewID, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan update log: %w", err)
		}
		out = append(out, &l)
	}
	return out, total, rows.Err()
}
