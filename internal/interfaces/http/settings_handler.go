package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/application/dto"
)

// SettingsHandler configuración POS por contribuyente.
type SettingsHandler struct {
	uc *billing.SettingsUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *billing.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// Get devuelve la configuración del contribuyente o la más reciente si no se indica.
// GET /posapi/settings, GET /posapi/settings/:merchantTin
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("merchantTin"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// Save crea o actualiza la configuración.
// POST /posapi/settings
func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	var in dto.PosSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Save(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// Delete elimina la configuración de un contribuyente.
// DELETE /posapi/settings/:merchantTin
func (h *SettingsHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("merchantTin")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Result{Success: true, Message: "settings deleted"})
}
