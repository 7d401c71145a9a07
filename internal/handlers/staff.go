package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
)

type StaffHandler struct {
	db *gorm.DB
}

func NewStaffHandler(db *gorm.DB) *StaffHandler {
	return &StaffHandler{db: db}
}

type staffRequest struct {
	Name     string           `json:"name" validate:"required"`
	Phone    string           `json:"phone" validate:"required"`
	Role     models.StaffRole `json:"role" validate:"required,oneof=INSTRUCTOR OFFICE"`
	IsActive *bool            `json:"is_active"`
}

func (h *StaffHandler) ListStaff(c echo.Context) error {
	query := h.db.Model(&models.Staff{}).Where("branch_id = ?", middleware.BranchID(c))
	if role := c.QueryParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var staff []models.Staff
	if err := query.Order("name").Find(&staff).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": staff})
}

func (h *StaffHandler) CreateStaff(c echo.Context) error {
	var req staffRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	staff := models.Staff{
		BranchID: middleware.BranchID(c),
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		IsActive: true,
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}
	if err := h.db.Create(&staff).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, staff)
}

func (h *StaffHandler) UpdateStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req staffRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var staff models.Staff
	err = h.db.Where("branch_id = ?", middleware.BranchID(c)).First(&staff, id).Error
	if err != nil {
		return orNotFound(err, "Staff")
	}

	staff.Name = req.Name
	staff.Phone = req.Phone
	staff.Role = req.Role
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}
	if err := h.db.Save(&staff).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) DeleteStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res := h.db.Where("branch_id = ?", middleware.BranchID(c)).Delete(&models.Staff{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Staff not found")
	}
	return c.NoContent(http.StatusNoContent)
}
