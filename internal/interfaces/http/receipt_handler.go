package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
)

// ReceiptHandler representación gráfica de recibos emitidos.
type ReceiptHandler struct {
	pdf *billing.PDFUseCase
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(pdf *billing.PDFUseCase) *ReceiptHandler {
	return &ReceiptHandler{pdf: pdf}
}

// DownloadPDF GET /posapi/receipts/:orderId/pdf?merchantTin=
func (h *ReceiptHandler) DownloadPDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.DownloadReceiptPDF(c.UserContext(), c.Params("orderId"), c.Query("merchantTin"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(data)
}
