package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
)

type RTOServiceHandler struct {
	db *gorm.DB
}

func NewRTOServiceHandler(db *gorm.DB) *RTOServiceHandler {
	return &RTOServiceHandler{db: db}
}

type rtoServiceRequest struct {
	ClientID      uint                  `json:"client_id" validate:"required"`
	ServiceType   models.RTOServiceType `json:"service_type" validate:"required,oneof=FULL_SERVICE NEW_DRIVING_LICENCE LICENSE_RENEWAL DUPLICATE_LICENSE ADDRESS_CHANGE"`
	GovernmentFee float64               `json:"government_fee" validate:"gte=0"`
	Remarks       string                `json:"remarks"`

	TotalAmount float64            `json:"total_amount" validate:"required,gt=0"`
	Discount    float64            `json:"discount" validate:"gte=0"`
	PaymentType models.PaymentType `json:"payment_type" validate:"required,oneof=FULL_PAYMENT PAY_LATER"`
}

// ListRTOServices returns the branch's RTO service requests.
func (h *RTOServiceHandler) ListRTOServices(c echo.Context) error {
	limit, offset := pagination(c)

	query := h.db.Model(&models.RTOService{}).
		Preload("Client").Preload("Payment.FullPayment").
		Where("branch_id = ?", middleware.BranchID(c))

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var items []models.RTOService
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// GetRTOService returns one request with its payment.
func (h *RTOServiceHandler) GetRTOService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var service models.RTOService
	err = h.db.Preload("Client").
		Preload("Payment.FullPayment").Preload("Payment.Transactions").
		Where("branch_id = ?", middleware.BranchID(c)).
		First(&service, id).Error
	if err != nil {
		return orNotFound(err, "RTO service")
	}
	return c.JSON(http.StatusOK, service)
}

// CreateRTOService opens a request and its payment in one transaction. RTO
// services settle in full or pay-later; they are never split into
// installments.
func (h *RTOServiceHandler) CreateRTOService(c echo.Context) error {
	var req rtoServiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	branchID := middleware.BranchID(c)

	var client models.Client
	if err := h.db.Where("branch_id = ?", branchID).First(&client, req.ClientID).Error; err != nil {
		return orNotFound(err, "Client")
	}

	var service models.RTOService
	err := h.db.Transaction(func(tx *gorm.DB) error {
		service = models.RTOService{
			BranchID:      branchID,
			ClientID:      client.ID,
			ServiceType:   req.ServiceType,
			Status:        models.RTOServiceStatusPending,
			GovernmentFee: req.GovernmentFee,
			Remarks:       req.Remarks,
		}
		if err := tx.Create(&service).Error; err != nil {
			return err
		}

		payment := models.Payment{
			BranchID:      branchID,
			ClientID:      client.ID,
			RTOServiceID:  &service.ID,
			TotalAmount:   req.TotalAmount,
			Discount:      req.Discount,
			PaymentType:   req.PaymentType,
			PaymentStatus: models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		full := models.FullPayment{PaymentID: payment.ID}
		if err := tx.Create(&full).Error; err != nil {
			return err
		}

		payment.FullPayment = &full
		service.Payment = &payment
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, service)
}

type rtoServiceUpdateRequest struct {
	Status        models.RTOServiceStatus `json:"status" validate:"omitempty,oneof=PENDING AWAITING_DOCUMENTS SUBMITTED COMPLETED REJECTED"`
	GovernmentFee *float64                `json:"government_fee" validate:"omitempty,gte=0"`
	Remarks       *string                 `json:"remarks"`
}

// UpdateRTOService moves the request through its workflow.
func (h *RTOServiceHandler) UpdateRTOService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req rtoServiceUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var service models.RTOService
	err = h.db.Where("branch_id = ?", middleware.BranchID(c)).First(&service, id).Error
	if err != nil {
		return orNotFound(err, "RTO service")
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.GovernmentFee != nil {
		updates["government_fee"] = *req.GovernmentFee
	}
	if req.Remarks != nil {
		updates["remarks"] = *req.Remarks
	}
	if len(updates) > 0 {
		if err := h.db.Model(&service).Updates(updates).Error; err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, service)
}

// DeleteRTOService soft-deletes a request.
func (h *RTOServiceHandler) DeleteRTOService(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res := h.db.Where("branch_id = ?", middleware.BranchID(c)).Delete(&models.RTOService{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "RTO service not found")
	}
	return c.NoContent(http.StatusNoContent)
}
