package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/billing"
	"drivedesk/internal/models"
	"drivedesk/internal/services"
	"drivedesk/internal/tasks"
)

// WebhookHandler receives gateway notifications and workflow triggers.
type WebhookHandler struct {
	db         *gorm.DB
	gateway    *services.GatewayService
	settlement *services.SettlementService
}

func NewWebhookHandler(db *gorm.DB, gateway *services.GatewayService, settlement *services.SettlementService) *WebhookHandler {
	return &WebhookHandler{db: db, gateway: gateway, settlement: settlement}
}

// PaymentGatewayNotification handles the gateway's server-to-server callback.
// The raw payload is archived first, then the status is re-fetched from the
// gateway rather than trusted from the request body.
func (h *WebhookHandler) PaymentGatewayNotification(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	var payload struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order_id")
	}

	history := models.PaymentCallbackHistory{
		Gateway:  "midtrans",
		OrderID:  payload.OrderID,
		Metadata: body,
	}
	if err := h.db.Create(&history).Error; err != nil {
		log.Printf("webhook: failed to archive callback for %s: %v", payload.OrderID, err)
	}

	statusResp, err := h.gateway.CheckTransaction(payload.OrderID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "gateway status check failed")
	}

	switch services.MapTransactionStatus(statusResp.TransactionStatus) {
	case billing.PollResultPaid:
		txn, err := h.settlement.SettleOrder(c.Request().Context(), payload.OrderID)
		if err != nil {
			// Already settled (poller or a duplicate callback got here first).
			log.Printf("webhook: settle %s: %v", payload.OrderID, err)
			return c.JSON(http.StatusOK, map[string]string{"status": "already_settled"})
		}
		h.afterSettlement(txn)
		return c.JSON(http.StatusOK, map[string]string{"status": "settled"})

	case billing.PollResultClosed:
		h.db.Model(&models.PaymentLink{}).
			Where("order_id = ?", payload.OrderID).
			Update("is_active", false)
		return c.JSON(http.StatusOK, map[string]string{"status": "closed"})

	default:
		return c.JSON(http.StatusOK, map[string]string{"status": "pending"})
	}
}

// afterSettlement re-arms the second-installment reminder when the first
// installment just settled. The link poller goes through the same path.
func (h *WebhookHandler) afterSettlement(txn *models.Transaction) {
	tasks.RearmSecondInstallment(h.db, txn)
}

// reminderTaskNames maps the URL task parameter to registry task names.
var reminderTaskNames = map[string]string{
	"installments":     tasks.TaskNameInstallmentReminder,
	"license-expiry":   tasks.TaskNameLicenseExpiryNotice,
	"test-eligibility": tasks.TaskNameTestEligibility,
	"notifications":    tasks.TaskNameSendNotification,
}

// RunReminders executes all due tasks of the named kind immediately instead of
// waiting for the worker's next tick. Guarded by the cron secret.
func (h *WebhookHandler) RunReminders(c echo.Context) error {
	name, ok := reminderTaskNames[c.Param("task")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown reminder task")
	}
	picked := tasks.ProcessDue(c.Request().Context(), h.db, name)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"task":      name,
		"processed": picked,
	})
}
