package repository

import (
	"context"

	"github.com/itsystem/posapi-bridge/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia de envíos al POS API.
// Los Find* devuelven (nil, nil) cuando no hay registro.
type ReceiptRepository interface {
	// Create reserva el registro; devuelve domain.ErrDuplicate si ya existe (OrderID, MerchantTin).
	Create(ctx context.Context, rec *entity.ReceiptRecord) error
	// Save inserta o reemplaza el registro de (OrderID, MerchantTin).
	Save(ctx context.Context, rec *entity.ReceiptRecord) error

	FindByOrderIDAndTin(ctx context.Context, orderID, merchantTin string) (*entity.ReceiptRecord, error)
	// FindLatestByOrderID registro más reciente (updated_at) del pedido, sin importar el contribuyente.
	FindLatestByOrderID(ctx context.Context, orderID string) (*entity.ReceiptRecord, error)
	FindByEbarimtID(ctx context.Context, ebarimtID string) (*entity.ReceiptRecord, error)

	List(ctx context.Context, f entity.ReceiptFilter) ([]*entity.ReceiptRecord, int, error)
}
