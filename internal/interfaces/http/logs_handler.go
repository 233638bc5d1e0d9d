package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/application/dto"
)

// LogsHandler bitácoras de conciliación (envíos, anulaciones, reemplazos).
type LogsHandler struct {
	uc *billing.LogsUseCase
}

// NewLogsHandler construye el handler.
func NewLogsHandler(uc *billing.LogsUseCase) *LogsHandler {
	return &LogsHandler{uc: uc}
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
}

// ListReceipts GET /posapi/response-logs?orderId=&status=&limit=&offset=
func (h *LogsHandler) ListReceipts(c *fiber.Ctx) error {
	out, err := h.uc.ListReceipts(c.UserContext(), dto.ReceiptLogQuery{
		PageRequest: pageFromQuery(c),
		OrderID:     c.Query("orderId"),
		Status:      c.Query("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// GetReceipt GET /posapi/response-logs/:orderId?merchantTin=
func (h *LogsHandler) GetReceipt(c *fiber.Ctx) error {
	out, err := h.uc.GetReceipt(c.UserContext(), c.Params("orderId"), c.Query("merchantTin"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// ListReturns GET /posapi/returns?orderId=
func (h *LogsHandler) ListReturns(c *fiber.Ctx) error {
	out, err := h.uc.ListReturns(c.UserContext(), dto.OrderLogQuery{
		PageRequest: pageFromQuery(c),
		OrderID:     c.Query("orderId"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// ListUpdates GET /posapi/updates?orderId=
func (h *LogsHandler) ListUpdates(c *fiber.Ctx) error {
	out, err := h.uc.ListUpdates(c.UserContext(), dto.OrderLogQuery{
		PageRequest: pageFromQuery(c),
		OrderID:     c.Query("orderId"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}
