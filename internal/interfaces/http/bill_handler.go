package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/application/dto"
)

// BillHandler envío, reemplazo y anulación de recibos ebarimt.
type BillHandler struct {
	uc     *billing.BillUseCase
	posapi *billing.PosAPIUseCase
}

// NewBillHandler construye el handler.
func NewBillHandler(uc *billing.BillUseCase, posapi *billing.PosAPIUseCase) *BillHandler {
	return &BillHandler{uc: uc, posapi: posapi}
}

func handleBill[T any](c *fiber.Ctx, fn func(context.Context, dto.BillRequest) (T, error)) error {
	var in dto.BillRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := fn(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// AddBill godoc
// @Summary      Emitir recibo
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BillRequest  true  "documento"
// @Success      200   {object}  dto.Result
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /posapi/addBill [post]
func (h *BillHandler) AddBill(c *fiber.Ctx) error {
	return handleBill(c, h.uc.AddBill)
}

// AddBillInvoice godoc
// @Summary      Emitir factura (pago opcional)
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BillRequest  true  "documento"
// @Success      200   {object}  dto.Result
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /posapi/addBillInvoice [post]
func (h *BillHandler) AddBillInvoice(c *fiber.Ctx) error {
	return handleBill(c, h.uc.AddInvoice)
}

// UpdateBill godoc
// @Summary      Reemplazar el recibo previo del pedido
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BillRequest  true  "documento"
// @Success      200   {object}  dto.Result
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /posapi/updateBill [post]
func (h *BillHandler) UpdateBill(c *fiber.Ctx) error {
	return handleBill(c, h.uc.UpdateBill)
}

// UpdateBillInvoice reemplaza la factura previa del pedido.
// POST /posapi/updateBillInvoice
func (h *BillHandler) UpdateBillInvoice(c *fiber.Ctx) error {
	return handleBill(c, h.uc.UpdateInvoice)
}

// Calculate devuelve el documento normalizado sin transmitirlo.
// POST /posapi/calculate
func (h *BillHandler) Calculate(c *fiber.Ctx) error {
	return handleBill(c, h.uc.Calculate)
}

// DeleteBill godoc
// @Summary      Anular recibo por id ebarimt
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeleteBillRequest  true  "documento"
// @Success      200   {object}  dto.Result
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /posapi/deleteBill [post]
func (h *BillHandler) DeleteBill(c *fiber.Ctx) error {
	var in dto.DeleteBillRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.DeleteBill(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// SendBills envía los documentos pendientes al servidor central.
// POST /posapi/sendBills
func (h *BillHandler) SendBills(c *fiber.Ctx) error {
	out, err := h.posapi.SendBills(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Result{Success: true, Message: out.Message, Data: out.Data})
}

// PosInfo información del POS API local.
// GET /posapi/info
func (h *BillHandler) PosInfo(c *fiber.Ctx) error {
	raw, err := h.posapi.Info(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, raw)
}
