package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"drivedesk/internal/services"
)

type WhatsappHandler struct {
	whatsapp *services.WhatsappService
}

func NewWhatsappHandler(whatsapp *services.WhatsappService) *WhatsappHandler {
	return &WhatsappHandler{whatsapp: whatsapp}
}

type whatsappTestRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// SendTest sends a one-off message to verify the WAHA gateway connection.
func (h *WhatsappHandler) SendTest(c echo.Context) error {
	var req whatsappTestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.whatsapp.SendMessage(req.Phone, req.Message); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "sent",
		"chat_id": services.NormalizeChatID(req.Phone),
	})
}
