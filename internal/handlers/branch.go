package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
	"drivedesk/internal/services"
)

type BranchHandler struct {
	settings *services.BranchSettingsService
}

func NewBranchHandler(settings *services.BranchSettingsService) *BranchHandler {
	return &BranchHandler{settings: settings}
}

// GetSettings returns the caller's branch settings.
func (h *BranchHandler) GetSettings(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context(), middleware.BranchID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

type branchSettingsRequest struct {
	WorkingHoursStart string  `json:"working_hours_start" validate:"required,datetime=15:04"`
	WorkingHoursEnd   string  `json:"working_hours_end" validate:"required,datetime=15:04"`
	LicenseServiceFee float64 `json:"license_service_fee" validate:"gte=0"`

	NotificationChannel models.NotificationChannel `json:"notification_channel" validate:"required,oneof=email whatsapp none"`
	NotificationPhone   string                     `json:"notification_phone"`
	NotificationEmail   string                     `json:"notification_email" validate:"omitempty,email"`

	SessionRemindersEnabled bool `json:"session_reminders_enabled"`
	PaymentRemindersEnabled bool `json:"payment_reminders_enabled"`
}

// UpdateSettings replaces the branch settings and invalidates the cache.
func (h *BranchHandler) UpdateSettings(c echo.Context) error {
	var req branchSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	settings := models.BranchSettings{
		WorkingHoursStart:       req.WorkingHoursStart,
		WorkingHoursEnd:         req.WorkingHoursEnd,
		LicenseServiceFee:       req.LicenseServiceFee,
		NotificationChannel:     req.NotificationChannel,
		NotificationPhone:       req.NotificationPhone,
		NotificationEmail:       req.NotificationEmail,
		SessionRemindersEnabled: req.SessionRemindersEnabled,
		PaymentRemindersEnabled: req.PaymentRemindersEnabled,
	}
	if err := h.settings.Update(c.Request().Context(), middleware.BranchID(c), settings); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}
