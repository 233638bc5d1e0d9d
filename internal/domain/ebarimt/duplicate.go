package ebarimt

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
)

// ReceiptLookup consultas de envíos previos que necesita el guardián de duplicados.
// repository.ReceiptRepository la satisface.
type ReceiptLookup interface {
	FindByOrderIDAndTin(ctx context.Context, orderID, merchantTin string) (*entity.ReceiptRecord, error)
	FindLatestByOrderID(ctx context.Context, orderID string) (*entity.ReceiptRecord, error)
}

// ExistingBill resumen del envío previo encontrado.
type ExistingBill struct {
	OrderID     string          `json:"orderId"`
	MerchantTin string          `json:"merchantTin"`
	EbarimtID   string          `json:"ebarimtId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	Success     bool            `json:"success"`
}

// DuplicateCheckResult resultado del guardián.
type DuplicateCheckResult struct {
	IsDuplicate  bool          `json:"isDuplicate"`
	ExistingBill *ExistingBill `json:"existingBill,omitempty"`
}

// CheckOrderIDDuplicate busca un envío previo por (orderID, merchantTin); sin merchantTin
// usa el más reciente del pedido. No persiste nada.
func CheckOrderIDDuplicate(ctx context.Context, lookup ReceiptLookup, orderID, merchantTin string) (DuplicateCheckResult, error) {
	var (
		rec *entity.ReceiptRecord
		err error
	)
	if merchantTin != "" {
		rec, err = lookup.FindByOrderIDAndTin(ctx, orderID, merchantTin)
	} else {
		rec, err = lookup.FindLatestByOrderID(ctx, orderID)
	}
	if err != nil {
		return DuplicateCheckResult{}, fmt.Errorf("buscar envío previo: %w", err)
	}
	if rec == nil {
		return DuplicateCheckResult{}, nil
	}
	return DuplicateCheckResult{
		IsDuplicate: true,
		ExistingBill: &ExistingBill{
			OrderID:     rec.OrderID,
			MerchantTin: rec.MerchantTin,
			EbarimtID:   rec.EbarimtID,
			TotalAmount: rec.TotalAmount,
			CreatedAt:   rec.CreatedAt,
			Success:     rec.Success,
		},
	}, nil
}

// ResolveResubmission aplica la política del llamador sobre el resultado del guardián y
// devuelve el inactiveId a usar:
//   - duplicado sin force: domain.ErrDuplicate
//   - duplicado con force y envío previo exitoso: el id externo previo (salvo que el llamador ya indique uno)
//   - sin duplicado: requestedInactiveID sin cambios
func ResolveResubmission(res DuplicateCheckResult, force bool, requestedInactiveID string) (string, error) {
	if !res.IsDuplicate {
		return requestedInactiveID, nil
	}
	if !force {
		return "", fmt.Errorf("%w: el pedido %s ya fue enviado", domain.ErrDuplicate, res.ExistingBill.OrderID)
	}
	if requestedInactiveID != "" {
		return requestedInactiveID, nil
	}
	if res.ExistingBill.Success && res.ExistingBill.EbarimtID != "" {
		return res.ExistingBill.EbarimtID, nil
	}
	return "", nil
}
