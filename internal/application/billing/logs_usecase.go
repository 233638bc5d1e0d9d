package billing

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/itsystem/posapi-bridge/internal/application/dto"
	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
)

// LogsUseCase consultas de conciliación: envíos, anulaciones y reemplazos.
type LogsUseCase struct {
	receiptRepo repository.ReceiptRepository
	returnRepo  repository.ReturnLogRepository
	updateRepo  repository.UpdateLogRepository
	validate    *validator.Validate
}

// NewLogsUseCase construye el caso de uso.
func NewLogsUseCase(
	receiptRepo repository.ReceiptRepository,
	returnRepo repository.ReturnLogRepository,
	updateRepo repository.UpdateLogRepository,
) *LogsUseCase {
	return &LogsUseCase{
		receiptRepo: receiptRepo,
		returnRepo:  returnRepo,
		updateRepo:  updateRepo,
		validate:    NewValidator(),
	}
}

// ListReceipts registros de envío filtrados por pedido y estado (success | failed).
func (uc *LogsUseCase) ListReceipts(ctx context.Context, q dto.ReceiptLogQuery) (*dto.ReceiptLogList, error) {
	q.DefaultPage()
	if err := ValidateStruct(uc.validate, q); err != nil {
		return nil, err
	}
	recs, total, err := uc.receiptRepo.List(ctx, entity.ReceiptFilter{
		OrderID: q.OrderID,
		Status:  q.Status,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ReceiptLogList{
		Items: make([]dto.ReceiptLogResponse, 0, len(recs)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, r := range recs {
		out.Items = append(out.Items, toReceiptLog(r, false))
	}
	return out, nil
}

// GetReceipt registro completo (con request/response) del pedido.
func (uc *LogsUseCase) GetReceipt(ctx context.Context, orderID, merchantTin string) (*dto.ReceiptLogResponse, error) {
	rec, err := findReceipt(ctx, uc.receiptRepo, orderID, merchantTin)
	if err != nil {
		return nil, err
	}
	out := toReceiptLog(rec, true)
	return &out, nil
}

// ListReturns anulaciones, opcionalmente de un pedido.
func (uc *LogsUseCase) ListReturns(ctx context.Context, q dto.OrderLogQuery) (*dto.ReturnLogList, error) {
	q.DefaultPage()
	logs, total, err := uc.returnRepo.List(ctx, q.OrderID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ReturnLogList{
		Items: make([]dto.ReturnLogResponse, 0, len(logs)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, l := range logs {
		out.Items = append(out.Items, dto.ReturnLogResponse{
			OrderID:    l.OrderID,
			EbarimtID:  l.EbarimtID,
			ReturnDate: l.ReturnDate,
			Success:    l.Success,
			Message:    l.Message,
		})
	}
	return out, nil
}

// ListUpdates reemplazos, opcionalmente de un pedido.
func (uc *LogsUseCase) ListUpdates(ctx context.Context, q dto.OrderLogQuery) (*dto.UpdateLogList, error) {
	q.DefaultPage()
	logs, total, err := uc.updateRepo.List(ctx, q.OrderID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.UpdateLogList{
		Items: make([]dto.UpdateLogResponse, 0, len(logs)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, l := range logs {
		out.Items = append(out.Items, dto.UpdateLogResponse{
			OrderID:   l.OrderID,
			OldID:     l.OldID,
			NewID:     l.NewID,
			CreatedAt: l.CreatedAt,
		})
	}
	return out, nil
}

// findReceipt por (pedido, TIN) o, sin TIN, el más reciente del pedido.
func findReceipt(ctx context.Context, repo repository.ReceiptRepository, orderID, merchantTin string) (*entity.ReceiptRecord, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("orderId is required")
	}
	var (
		rec *entity.ReceiptRecord
		err error
	)
	if merchantTin != "" {
		rec, err = repo.FindByOrderIDAndTin(ctx, orderID, merchantTin)
	} else {
		rec, err = repo.FindLatestByOrderID(ctx, orderID)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func toReceiptLog(r *entity.ReceiptRecord, withPayloads bool) dto.ReceiptLogResponse {
	out := dto.ReceiptLogResponse{
		OrderID:         r.OrderID,
		MerchantTin:     r.MerchantTin,
		EbarimtID:       r.EbarimtID,
		ReceiptType:     r.ReceiptType,
		TotalAmount:     r.TotalAmount,
		TotalVAT:        r.TotalVAT,
		TotalCityTax:    r.TotalCityTax,
		Success:         r.Success,
		ErrorMessage:    r.ErrorMessage,
		ResponseStatus:  r.ResponseStatus,
		ResponseMessage: r.ResponseMessage,
		ResponseDate:    r.ResponseDate,
		Lottery:         r.Lottery,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if withPayloads {
		out.Request = r.Request
		out.Response = r.Response
	}
	return out
}
