package repository

import (
	"context"

	"github.com/itsystem/posapi-bridge/internal/domain/entity"
)

// ReturnLogRepository bitácora de anulaciones.
type ReturnLogRepository interface {
	Create(ctx context.Context, l *entity.ReturnLog) error
	List(ctx context.Context, orderID string, limit, offset int) ([]*entity.ReturnLog, int, error)
}

// UpdateLogRepository bitácora de reemplazos; un par (OrderID, OldID, NewID) se registra una sola vez.
type UpdateLogRepository interface {
	Create(ctx context.Context, l *entity.UpdateLog) error
	List(ctx context.Context, orderID string, limit, offset int) ([]*entity.UpdateLog, int, error)
}
