package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
	"drivedesk/internal/services"
)

type PaymentHandler struct {
	db         *gorm.DB
	links      *services.PaymentLinkService
	settlement *services.SettlementService
	pollers    *services.PollRegistry
}

func NewPaymentHandler(db *gorm.DB, links *services.PaymentLinkService, settlement *services.SettlementService, pollers *services.PollRegistry) *PaymentHandler {
	return &PaymentHandler{db: db, links: links, settlement: settlement, pollers: pollers}
}

// ListPayments returns the branch's payments, optionally filtered by status or
// client.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	limit, offset := pagination(c)

	query := h.db.Model(&models.Payment{}).
		Preload("Client").Preload("FullPayment").Preload("Installments").
		Where("branch_id = ?", middleware.BranchID(c))

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var payments []models.Payment
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": payments})
}

// GetPayment returns one payment with its sub-records and ledger.
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var payment models.Payment
	err = h.db.Preload("Client").Preload("FullPayment").Preload("Installments").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at desc") }).
		Where("branch_id = ?", middleware.BranchID(c)).
		First(&payment, id).Error
	if err != nil {
		return orNotFound(err, "Payment")
	}
	return c.JSON(http.StatusOK, payment)
}

// ListTransactions returns the payment's ledger, newest first.
func (h *PaymentHandler) ListTransactions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var payment models.Payment
	if err := h.db.Where("branch_id = ?", middleware.BranchID(c)).First(&payment, id).Error; err != nil {
		return orNotFound(err, "Payment")
	}

	var txns []models.Transaction
	if err := h.db.Where("payment_id = ?", payment.ID).Order("created_at desc").Find(&txns).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": txns})
}

type transactionRequest struct {
	InstallmentNumber int                `json:"installment_number" validate:"gte=0,lte=2"`
	Amount            float64            `json:"amount" validate:"required,gt=0"`
	Mode              models.PaymentMode `json:"mode" validate:"required,oneof=CASH QR"`
	Notes             string             `json:"notes"`
	TransactionAt     *time.Time         `json:"transaction_at"`
}

// RecordTransaction appends a manual CASH/QR settlement to the ledger.
// Gateway settlements arrive through the webhook and poller instead.
func (h *PaymentHandler) RecordTransaction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req transactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var payment models.Payment
	err = h.db.Preload("FullPayment").Preload("Installments").
		Where("branch_id = ?", middleware.BranchID(c)).
		First(&payment, id).Error
	if err != nil {
		return orNotFound(err, "Payment")
	}

	if payment.PaymentType == models.PaymentTypeInstallments && req.InstallmentNumber == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "installment payments settle per installment; specify installment_number")
	}
	if payment.PaymentType != models.PaymentTypeInstallments && req.InstallmentNumber > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "payment is not split into installments")
	}

	txn := models.Transaction{
		InstallmentNumber: req.InstallmentNumber,
		Amount:            req.Amount,
		Mode:              req.Mode,
		Status:            models.TransactionStatusSuccess,
		Notes:             req.Notes,
	}
	if req.TransactionAt != nil {
		txn.TransactionAt = *req.TransactionAt
	}

	if err := h.settlement.Record(c.Request().Context(), &payment, &txn); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusCreated, txn)
}

type sendLinkRequest struct {
	InstallmentNumber int    `json:"installment_number" validate:"gte=0,lte=2"`
	ForceNew          bool   `json:"force_new"`
	CallbackURL       string `json:"callback_url"`
}

// SendLink creates (or resumes) a gateway payment link for the payment and
// starts watching it for settlement.
func (h *PaymentHandler) SendLink(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req sendLinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var payment models.Payment
	err = h.db.Preload("Client").Preload("FullPayment").Preload("Installments").
		Where("branch_id = ?", middleware.BranchID(c)).
		First(&payment, id).Error
	if err != nil {
		return orNotFound(err, "Payment")
	}

	if payment.PaymentType == models.PaymentTypeInstallments && req.InstallmentNumber == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "installment payments settle per installment; specify installment_number")
	}

	amount := payment.AmountDue()
	description := "Driving course fee"
	if req.InstallmentNumber > 0 {
		inst := payment.Installment(req.InstallmentNumber)
		if inst == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "payment has no such installment")
		}
		if inst.IsPaid {
			return echo.NewHTTPError(http.StatusConflict, "installment already settled")
		}
		amount = inst.Amount
		description = "Driving course installment"
	}

	result, err := h.links.SendLink(c.Request().Context(), services.SendLinkParams{
		Payment:           &payment,
		InstallmentNumber: req.InstallmentNumber,
		Amount:            amount,
		CustomerName:      payment.Client.FullName(),
		CustomerPhone:     payment.Client.Phone,
		CustomerEmail:     payment.Client.Email,
		Description:       description,
		CallbackURL:       req.CallbackURL,
		ForceNew:          req.ForceNew,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	h.pollers.Watch(result.OrderID)
	return c.JSON(http.StatusCreated, result)
}

// LinkStatus reports the watcher state for an order id.
func (h *PaymentHandler) LinkStatus(c echo.Context) error {
	orderID := c.Param("orderID")
	state, attempts := h.pollers.State(orderID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id": orderID,
		"state":    state,
		"attempts": attempts,
	})
}

// StopLink cancels the watcher for an order id. The link itself stays valid at
// the gateway until it expires.
func (h *PaymentHandler) StopLink(c echo.Context) error {
	h.pollers.Stop(c.Param("orderID"))
	return c.NoContent(http.StatusNoContent)
}
