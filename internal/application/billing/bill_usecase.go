package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/itsystem/posapi-bridge/internal/application/dto"
	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/ebarimt"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
	pkgebarimt "github.com/itsystem/posapi-bridge/pkg/ebarimt"
)

// Resultados para métricas.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"

	RejectValidation = "validation"
	RejectDuplicate  = "duplicate"
)

// DateLayout formato de fecha del POS API en respuestas y anulaciones.
const DateLayout = "2006-01-02 15:04:05"

// BillUseCase emisión, reemplazo y anulación de recibos ebarimt.
//
// Flujo de emisión: parseo -> lock por pedido -> guardián de duplicados -> procesador ->
// reserva del registro -> POS API -> registro de la respuesta (+ enlace de reemplazo) en una transacción.
type BillUseCase struct {
	receiptRepo repository.ReceiptRepository
	returnRepo  repository.ReturnLogRepository
	txRunner    ReceiptTxRunner
	client      FiscalClient
	parser      *RequestParser
	processor   ebarimt.BillProcessor
	locker      OrderLocker
	observer    BillObserver
	log         zerolog.Logger
	now         func() time.Time
}

// NewBillUseCase construye el caso de uso. locker y observer pueden ser nil.
func NewBillUseCase(
	receiptRepo repository.ReceiptRepository,
	returnRepo repository.ReturnLogRepository,
	txRunner ReceiptTxRunner,
	client FiscalClient,
	parser *RequestParser,
	processor ebarimt.BillProcessor,
	locker OrderLocker,
	observer BillObserver,
	log zerolog.Logger,
) *BillUseCase {
	if locker == nil {
		locker = NoopLocker{}
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	return &BillUseCase{
		receiptRepo: receiptRepo,
		returnRepo:  returnRepo,
		txRunner:    txRunner,
		client:      client,
		parser:      parser,
		processor:   processor,
		locker:      locker,
		observer:    observer,
		log:         log,
		now:         time.Now,
	}
}

// AddBill emite un recibo nuevo. Un pedido ya enviado se rechaza con domain.ErrDuplicate
// salvo force=true, en cuyo caso reemplaza al recibo previo exitoso.
func (uc *BillUseCase) AddBill(ctx context.Context, req dto.BillRequest) (*dto.BillResponse, error) {
	in, err := uc.parser.Parse(ctx, req)
	if err != nil {
		uc.rejected(err)
		return nil, err
	}
	return uc.submit(ctx, in, false)
}

// AddInvoice emite una factura (B2C_INVOICE / B2B_INVOICE), sin líneas de pago.
func (uc *BillUseCase) AddInvoice(ctx context.Context, req dto.BillRequest) (*dto.BillResponse, error) {
	in, err := uc.parser.ParseInvoice(ctx, req)
	if err != nil {
		uc.rejected(err)
		return nil, err
	}
	return uc.submit(ctx, in, false)
}

// UpdateBill reemplaza un recibo existente del pedido; inactiveId por defecto es su id ebarimt.
// Sin recibo previo devuelve domain.ErrNotFound.
func (uc *BillUseCase) UpdateBill(ctx context.Context, req dto.BillRequest) (*dto.BillResponse, error) {
	in, err := uc.parser.Parse(ctx, req)
	if err != nil {
		uc.rejected(err)
		return nil, err
	}
	return uc.submit(ctx, in, true)
}

// UpdateInvoice como UpdateBill para facturas.
func (uc *BillUseCase) UpdateInvoice(ctx context.Context, req dto.BillRequest) (*dto.BillResponse, error) {
	in, err := uc.parser.ParseInvoice(ctx, req)
	if err != nil {
		uc.rejected(err)
		return nil, err
	}
	return uc.submit(ctx, in, true)
}

// Calculate normaliza el pedido sin enviarlo ni persistirlo.
func (uc *BillUseCase) Calculate(ctx context.Context, req dto.BillRequest) (*entity.DirectBillRequest, error) {
	in, err := uc.parser.Parse(ctx, req)
	if err != nil {
		return nil, err
	}
	return uc.processor.Process(in)
}

func (uc *BillUseCase) submit(ctx context.Context, in entity.InputBillRequest, replace bool) (*dto.BillResponse, error) {
	var resp *dto.BillResponse
	key := "posapi:order:" + in.MerchantTin + ":" + in.OrderID
	err := uc.locker.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		resp, err = uc.submitLocked(ctx, in, replace)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (uc *BillUseCase) submitLocked(ctx context.Context, in entity.InputBillRequest, replace bool) (*dto.BillResponse, error) {
	dup, err := ebarimt.CheckOrderIDDuplicate(ctx, uc.receiptRepo, in.OrderID, in.MerchantTin)
	if err != nil {
		return nil, err
	}

	if replace {
		if !dup.IsDuplicate {
			return nil, fmt.Errorf("%w: no existe recibo para el pedido %s", domain.ErrNotFound, in.OrderID)
		}
		if in.InactiveID == "" {
			in.InactiveID = dup.ExistingBill.EbarimtID
		}
		if in.InactiveID == "" {
			return nil, fmt.Errorf("%w: el pedido %s no tiene recibo emitido para reemplazar", domain.ErrConflict, in.OrderID)
		}
	} else {
		inactive, err := ebarimt.ResolveResubmission(dup, in.Force, in.InactiveID)
		if err != nil {
			uc.rejected(err)
			return nil, err
		}
		in.InactiveID = inactive
	}

	doc, err := uc.processor.Process(in)
	if err != nil {
		uc.rejected(err)
		return nil, err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializar documento: %w", err)
	}
	rec := &entity.ReceiptRecord{
		OrderID:      doc.OrderID,
		MerchantTin:  doc.MerchantTin,
		Request:      payload,
		TotalAmount:  doc.TotalAmount,
		TotalVAT:     doc.TotalVAT,
		TotalCityTax: doc.TotalCityTax,
		ReceiptType:  doc.Type,
	}
	// Un recibo vigente solo se sobrescribe tras una emisión exitosa: si el reemplazo falla
	// su id ebarimt sigue siendo el que se anula o reemplaza después.
	keepLive := dup.IsDuplicate && dup.ExistingBill.Success && dup.ExistingBill.EbarimtID != ""

	// Reserva antes de transmitir: la restricción única (order_id, merchant_tin) es la garantía final.
	switch {
	case keepLive:
	case dup.IsDuplicate:
		err = uc.receiptRepo.Save(ctx, rec)
	default:
		err = uc.receiptRepo.Create(ctx, rec)
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			uc.observer.BillRejected(RejectDuplicate)
		}
		return nil, err
	}

	start := uc.now()
	res, err := uc.client.Submit(ctx, doc)
	elapsed := uc.now().Sub(start)
	if err != nil {
		rec.ResponseStatus = pkgebarimt.ResponseStatusError
		rec.ErrorMessage = err.Error()
		if !keepLive {
			if saveErr := uc.receiptRepo.Save(ctx, rec); saveErr != nil {
				uc.log.Error().Err(saveErr).Str("order_id", rec.OrderID).Msg("guardar fallo de envío")
			}
		}
		uc.observer.BillSubmitted(doc.Type, OutcomeUnavailable, elapsed)
		uc.log.Error().Err(err).Str("order_id", rec.OrderID).Str("merchant_tin", rec.MerchantTin).Msg("POS API no disponible")
		return nil, fmt.Errorf("%w: %v", domain.ErrFiscalUnavailable, err)
	}

	applySubmitResult(rec, res)
	if !rec.Success && keepLive {
		uc.observer.BillSubmitted(doc.Type, OutcomeRejected, elapsed)
		uc.log.Warn().
			Str("order_id", rec.OrderID).
			Str("ebarimt_id", dup.ExistingBill.EbarimtID).
			Str("status", rec.ResponseStatus).
			Str("message", rec.ResponseMessage).
			Msg("reemplazo rechazado, se conserva el recibo vigente")
		return nil, fmt.Errorf("%w: %s", domain.ErrFiscalRejected, rec.ErrorMessage)
	}
	err = uc.txRunner.RunReceipt(ctx, func(receiptRepo repository.ReceiptRepository, updateRepo repository.UpdateLogRepository) error {
		if err := receiptRepo.Save(ctx, rec); err != nil {
			return err
		}
		if rec.Success && doc.InactiveID != "" {
			return updateRepo.Create(ctx, &entity.UpdateLog{
				OrderID: rec.OrderID,
				OldID:   doc.InactiveID,
				NewID:   rec.EbarimtID,
			})
		}
		return nil
	})
	if err != nil {
		// El recibo ya fue emitido; se informa el fallo local sin ocultar la emisión.
		uc.log.Error().Err(err).Str("order_id", rec.OrderID).Str("ebarimt_id", rec.EbarimtID).Msg("guardar respuesta del POS API")
		return nil, fmt.Errorf("guardar respuesta del POS API (ebarimt %s): %w", rec.EbarimtID, err)
	}

	if !rec.Success {
		uc.observer.BillSubmitted(doc.Type, OutcomeRejected, elapsed)
		uc.log.Warn().Str("order_id", rec.OrderID).Str("status", rec.ResponseStatus).Str("message", rec.ResponseMessage).Msg("recibo rechazado")
		return nil, fmt.Errorf("%w: %s", domain.ErrFiscalRejected, rec.ErrorMessage)
	}

	uc.observer.BillSubmitted(doc.Type, OutcomeSuccess, elapsed)
	uc.log.Info().
		Str("order_id", rec.OrderID).
		Str("merchant_tin", rec.MerchantTin).
		Str("ebarimt_id", rec.EbarimtID).
		Str("inactive_id", doc.InactiveID).
		Str("type", doc.Type).
		Msg("recibo emitido")
	return toBillResponse(rec, doc), nil
}

// DeleteBill anula un recibo emitido por su id ebarimt y registra la anulación.
func (uc *BillUseCase) DeleteBill(ctx context.Context, req dto.DeleteBillRequest) (*dto.DeleteBillResponse, error) {
	if req.EbarimtID == "" {
		return nil, domain.NewValidationError("ebarimtId is required")
	}
	rec, err := uc.receiptRepo.FindByEbarimtID(ctx, req.EbarimtID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: recibo %s", domain.ErrNotFound, req.EbarimtID)
	}

	asOf := rec.CreatedAt
	if rec.ResponseDate != nil {
		asOf = *rec.ResponseDate
	}
	res, err := uc.client.Cancel(ctx, rec.EbarimtID, asOf)
	if err != nil {
		uc.observer.BillCancelled(OutcomeUnavailable)
		return nil, fmt.Errorf("%w: %v", domain.ErrFiscalUnavailable, err)
	}

	logEntry := &entity.ReturnLog{
		OrderID:    rec.OrderID,
		EbarimtID:  rec.EbarimtID,
		ReturnDate: uc.now(),
		Success:    res.Success,
		Message:    res.Message,
	}
	if err := uc.returnRepo.Create(ctx, logEntry); err != nil {
		uc.log.Error().Err(err).Str("ebarimt_id", rec.EbarimtID).Msg("guardar anulación")
	}

	if !res.Success {
		uc.observer.BillCancelled(OutcomeRejected)
		return nil, fmt.Errorf("%w: %s", domain.ErrFiscalRejected, res.Message)
	}
	uc.observer.BillCancelled(OutcomeSuccess)
	uc.log.Info().Str("order_id", rec.OrderID).Str("ebarimt_id", rec.EbarimtID).Msg("recibo anulado")
	return &dto.DeleteBillResponse{OrderID: rec.OrderID, EbarimtID: rec.EbarimtID, Message: res.Message}, nil
}

func (uc *BillUseCase) rejected(err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		uc.observer.BillRejected(RejectDuplicate)
	case errors.Is(err, domain.ErrInvalidInput):
		uc.observer.BillRejected(RejectValidation)
	}
}

func applySubmitResult(rec *entity.ReceiptRecord, res *SubmitResult) {
	rec.Response = res.Raw
	rec.EbarimtID = res.EbarimtID
	rec.ResponseStatus = res.Status
	rec.ResponseMessage = res.Message
	rec.ResponseDate = res.Date
	rec.QRData = res.QRData
	rec.Lottery = res.Lottery
	rec.Success = res.Success && res.Status == pkgebarimt.ResponseStatusSuccess
	rec.ErrorMessage = ""
	if !rec.Success {
		rec.ErrorMessage = res.Message
		if rec.ErrorMessage == "" {
			rec.ErrorMessage = "estado " + res.Status
		}
	}
}

func toBillResponse(rec *entity.ReceiptRecord, doc *entity.DirectBillRequest) *dto.BillResponse {
	out := &dto.BillResponse{
		OrderID:      rec.OrderID,
		EbarimtID:    rec.EbarimtID,
		Status:       rec.ResponseStatus,
		Message:      rec.ResponseMessage,
		QRData:       rec.QRData,
		Lottery:      rec.Lottery,
		InactiveID:   doc.InactiveID,
		TotalAmount:  doc.TotalAmount,
		TotalVAT:     doc.TotalVAT,
		TotalCityTax: doc.TotalCityTax,
	}
	if rec.ResponseDate != nil {
		out.Date = rec.ResponseDate.Format(DateLayout)
	}
	return out
}
