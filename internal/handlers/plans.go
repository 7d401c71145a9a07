package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/billing"
	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
	"drivedesk/internal/services"
	"drivedesk/internal/tasks"
)

type PlanHandler struct {
	db       *gorm.DB
	settings *services.BranchSettingsService
}

func NewPlanHandler(db *gorm.DB, settings *services.BranchSettingsService) *PlanHandler {
	return &PlanHandler{db: db, settings: settings}
}

type planRequest struct {
	ClientID         uint    `json:"client_id" validate:"required"`
	VehicleID        uint    `json:"vehicle_id" validate:"required"`
	NumberOfSessions int     `json:"number_of_sessions" validate:"required,min=1"`
	SessionDuration  int     `json:"session_duration" validate:"required,min=15"`
	JoiningDate      string  `json:"joining_date" validate:"required,datetime=2006-01-02"`
	TotalAmount      float64 `json:"total_amount" validate:"required,gt=0"`
	Discount         float64 `json:"discount" validate:"gte=0"`

	PaymentType models.PaymentType `json:"payment_type" validate:"required,oneof=FULL_PAYMENT INSTALLMENTS PAY_LATER"`
}

// planView is a plan plus the classifier's verdict at render time.
type planView struct {
	models.Plan
	PaymentOverdue bool `json:"payment_overdue"`
}

// ListPlans returns the branch's enrollments with overdue classification.
// ?overdue=true narrows to overdue plans only.
func (h *PlanHandler) ListPlans(c echo.Context) error {
	limit, offset := pagination(c)
	branchID := middleware.BranchID(c)

	query := h.db.Model(&models.Plan{}).
		Preload("Client").Preload("Vehicle").
		Preload("Payment.FullPayment").Preload("Payment.Installments").
		Where("branch_id = ?", branchID)

	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var plans []models.Plan
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&plans).Error; err != nil {
		return err
	}

	onlyOverdue := c.QueryParam("overdue") == "true"
	now := time.Now()

	views := make([]planView, 0, len(plans))
	for _, plan := range plans {
		overdue := billing.IsOverdue(plan.Payment, plan.JoiningDate, now)
		if onlyOverdue && !overdue {
			continue
		}
		views = append(views, planView{Plan: plan, PaymentOverdue: overdue})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": views})
}

// GetPlan returns one enrollment with its payment state and sessions.
func (h *PlanHandler) GetPlan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var plan models.Plan
	err = h.db.Preload("Client").Preload("Vehicle").
		Preload("Payment.FullPayment").Preload("Payment.Installments").Preload("Payment.Transactions").
		Preload("Sessions").
		Where("branch_id = ?", middleware.BranchID(c)).
		First(&plan, id).Error
	if err != nil {
		return orNotFound(err, "Plan")
	}

	return c.JSON(http.StatusOK, planView{
		Plan:           plan,
		PaymentOverdue: billing.IsOverdue(plan.Payment, plan.JoiningDate, time.Now()),
	})
}

// CreatePlan enrolls a client: plan, payment with settlement sub-records, and
// the installment reminder where applicable. Plan and payment are written in
// one transaction; reminder scheduling is fire-and-forget after commit.
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	var req planRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	branchID := middleware.BranchID(c)

	var client models.Client
	if err := h.db.Where("branch_id = ?", branchID).First(&client, req.ClientID).Error; err != nil {
		return orNotFound(err, "Client")
	}
	var vehicle models.Vehicle
	if err := h.db.Where("branch_id = ?", branchID).First(&vehicle, req.VehicleID).Error; err != nil {
		return orNotFound(err, "Vehicle")
	}

	settings, err := h.settings.Get(c.Request().Context(), branchID)
	if err != nil {
		return err
	}

	var plan models.Plan
	err = h.db.Transaction(func(tx *gorm.DB) error {
		plan = models.Plan{
			BranchID:         branchID,
			ClientID:         client.ID,
			VehicleID:        vehicle.ID,
			NumberOfSessions: req.NumberOfSessions,
			SessionDuration:  req.SessionDuration,
			JoiningDate:      req.JoiningDate,
			Status:           models.PlanStatusActive,
		}
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}

		payment := models.Payment{
			BranchID:          branchID,
			ClientID:          client.ID,
			PlanID:            &plan.ID,
			TotalAmount:       req.TotalAmount,
			Discount:          req.Discount,
			LicenseServiceFee: settings.LicenseServiceFee,
			PaymentType:       req.PaymentType,
			PaymentStatus:     models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		switch req.PaymentType {
		case models.PaymentTypeInstallments:
			// Two equal halves of the discounted total.
			half := payment.AmountDue() / 2
			installments := []models.InstallmentPayment{
				{PaymentID: payment.ID, InstallmentNumber: 1, Amount: half},
				{PaymentID: payment.ID, InstallmentNumber: 2, Amount: payment.AmountDue() - half},
			}
			if err := tx.Create(&installments).Error; err != nil {
				return err
			}
		default:
			full := models.FullPayment{PaymentID: payment.ID}
			if err := tx.Create(&full).Error; err != nil {
				return err
			}
		}

		plan.Payment = &payment
		return nil
	})
	if err != nil {
		return err
	}

	if req.PaymentType == models.PaymentTypeInstallments && settings.PaymentRemindersEnabled {
		tasks.TriggerInstallmentReminder(h.db, plan.Payment, plan.JoiningDate)
	}

	return c.JSON(http.StatusCreated, plan)
}

// UpdatePlanStatus moves an enrollment through its lifecycle.
func (h *PlanHandler) UpdatePlanStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req struct {
		Status models.PlanStatus `json:"status" validate:"required,oneof=ACTIVE COMPLETED DROPPED"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res := h.db.Model(&models.Plan{}).
		Where("id = ? AND branch_id = ?", id, middleware.BranchID(c)).
		Update("status", req.Status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}

	return c.NoContent(http.StatusNoContent)
}
