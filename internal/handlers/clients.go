package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/billing"
	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
	"drivedesk/internal/tasks"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

// ListClients returns the branch's clients, newest first.
func (h *ClientHandler) ListClients(c echo.Context) error {
	limit, offset := pagination(c)
	branchID := middleware.BranchID(c)

	query := h.db.Model(&models.Client{}).Where("branch_id = ?", branchID)
	if search := c.QueryParam("q"); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR phone ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var clients []models.Client
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": clients,
		"total": total,
	})
}

// GetClient returns one client with licenses and plans.
func (h *ClientHandler) GetClient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var client models.Client
	err = h.db.Preload("Plans.Payment.Installments").Preload("Plans.Payment.FullPayment").
		Preload("LearningLicense").Preload("DrivingLicense").
		Where("branch_id = ?", middleware.BranchID(c)).
		First(&client, id).Error
	if err != nil {
		return orNotFound(err, "Client")
	}

	return c.JSON(http.StatusOK, client)
}

// CreateClient admits a new client to the branch.
func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req clientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client := models.Client{
		BranchID:  middleware.BranchID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		BirthDate: req.BirthDate,
	}
	if err := h.db.Create(&client).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, client)
}

// UpdateClient edits admission details.
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var client models.Client
	if err := h.db.Where("branch_id = ?", middleware.BranchID(c)).First(&client, id).Error; err != nil {
		return orNotFound(err, "Client")
	}

	var req clientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	client.FirstName = req.FirstName
	client.LastName = req.LastName
	client.Phone = req.Phone
	client.Email = req.Email
	client.Address = req.Address
	client.BirthDate = req.BirthDate
	if err := h.db.Save(&client).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, client)
}

// DeleteClient soft-deletes a client.
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	res := h.db.Where("branch_id = ?", middleware.BranchID(c)).Delete(&models.Client{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}

	return c.NoContent(http.StatusNoContent)
}

type licenseRequest struct {
	LicenseNumber string `json:"license_number" validate:"required"`
	Class         string `json:"class"`
	IssueDate     string `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate    string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r licenseRequest) dates() (issue, expiry *time.Time, err error) {
	if r.IssueDate != "" {
		d, perr := billing.ParseLocalDate(r.IssueDate)
		if perr != nil {
			return nil, nil, perr
		}
		issue = &d
	}
	if r.ExpiryDate != "" {
		d, perr := billing.ParseLocalDate(r.ExpiryDate)
		if perr != nil {
			return nil, nil, perr
		}
		expiry = &d
	}
	return issue, expiry, nil
}

// UpsertLearningLicense records the learner's permit and schedules the 30-day
// test-eligibility reminder.
func (h *ClientHandler) UpsertLearningLicense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	branchID := middleware.BranchID(c)

	var client models.Client
	if err := h.db.Where("branch_id = ?", branchID).First(&client, id).Error; err != nil {
		return orNotFound(err, "Client")
	}

	var req licenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	issue, expiry, err := req.dates()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date format")
	}

	var license models.LearningLicense
	err = h.db.Where("client_id = ?", client.ID).First(&license).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	license.BranchID = branchID
	license.ClientID = client.ID
	license.LicenseNumber = req.LicenseNumber
	license.Class = req.Class
	license.IssueDate = issue
	license.ExpiryDate = expiry
	if err := h.db.Save(&license).Error; err != nil {
		return err
	}

	// Reminder scheduling must not block the upload.
	tasks.TriggerTestEligibilityReminder(h.db, &license)

	return c.JSON(http.StatusOK, license)
}

// UpsertDrivingLicense records the full license and schedules the staged
// expiry notices.
func (h *ClientHandler) UpsertDrivingLicense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	branchID := middleware.BranchID(c)

	var client models.Client
	if err := h.db.Where("branch_id = ?", branchID).First(&client, id).Error; err != nil {
		return orNotFound(err, "Client")
	}

	var req licenseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	issue, expiry, err := req.dates()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date format")
	}

	var license models.DrivingLicense
	err = h.db.Where("client_id = ?", client.ID).First(&license).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	license.BranchID = branchID
	license.ClientID = client.ID
	license.LicenseNumber = req.LicenseNumber
	license.Class = req.Class
	license.IssueDate = issue
	license.ExpiryDate = expiry
	if err := h.db.Save(&license).Error; err != nil {
		return err
	}

	tasks.TriggerLicenseExpiryNotices(h.db, &license)

	return c.JSON(http.StatusOK, license)
}
