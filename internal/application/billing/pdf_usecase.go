package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itsystem/posapi-bridge/internal/domain"
	"github.com/itsystem/posapi-bridge/internal/domain/entity"
	"github.com/itsystem/posapi-bridge/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de un recibo ebarimt emitido.
type PDFUseCase struct {
	receiptRepo repository.ReceiptRepository
	generator   ReceiptPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(receiptRepo repository.ReceiptRepository, generator ReceiptPDFGenerator) *PDFUseCase {
	return &PDFUseCase{receiptRepo: receiptRepo, generator: generator}
}

// DownloadReceiptPDF genera el PDF del recibo del pedido.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si no hay registro del pedido.
//   - domain.ErrInvalidInput     si el recibo no fue emitido (sin id ebarimt).
func (uc *PDFUseCase) DownloadReceiptPDF(ctx context.Context, orderID, merchantTin string) ([]byte, string, error) {
	rec, err := findReceipt(ctx, uc.receiptRepo, orderID, merchantTin)
	if err != nil {
		return nil, "", err
	}
	if !rec.Success || rec.EbarimtID == "" {
		return nil, "", fmt.Errorf("%w: el pedido %s no tiene recibo emitido", domain.ErrInvalidInput, orderID)
	}

	var doc entity.DirectBillRequest
	if err := json.Unmarshal(rec.Request, &doc); err != nil {
		return nil, "", fmt.Errorf("pdf: decodificar documento: %w", err)
	}

	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, rec, &doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar: %w", err)
	}
	return pdfBytes, fmt.Sprintf("ebarimt-%s.pdf", rec.OrderID), nil
}
