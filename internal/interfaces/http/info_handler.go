package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
)

// InfoHandler proxy del directorio público de ebarimt.
type InfoHandler struct {
	uc *billing.InfoUseCase
}

// NewInfoHandler construye el handler.
func NewInfoHandler(uc *billing.InfoUseCase) *InfoHandler {
	return &InfoHandler{uc: uc}
}

func rawResult(c *fiber.Ctx, fn func(context.Context) (json.RawMessage, error)) error {
	raw, err := fn(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, raw)
}

// Branches GET /posapi/info/branches
func (h *InfoHandler) Branches(c *fiber.Ctx) error {
	return rawResult(c, h.uc.Branches)
}

// ProductTaxCodes GET /posapi/info/product-tax-codes
func (h *InfoHandler) ProductTaxCodes(c *fiber.Ctx) error {
	return rawResult(c, h.uc.ProductTaxCodes)
}

// TinByRegNo GET /posapi/info/tin-by-reg/:regNo
func (h *InfoHandler) TinByRegNo(c *fiber.Ctx) error {
	regNo := c.Params("regNo")
	return rawResult(c, func(ctx context.Context) (json.RawMessage, error) {
		return h.uc.TinByRegNo(ctx, regNo)
	})
}

// TinInfo GET /posapi/info/tin/:tin
func (h *InfoHandler) TinInfo(c *fiber.Ctx) error {
	tin := c.Params("tin")
	return rawResult(c, func(ctx context.Context) (json.RawMessage, error) {
		return h.uc.TinInfo(ctx, tin)
	})
}
