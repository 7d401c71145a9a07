package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
)

type VehicleHandler struct {
	db *gorm.DB
}

func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{db: db}
}

type vehicleRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required"`
	Model              string `json:"model" validate:"required"`
	Type               string `json:"type" validate:"required,oneof=CAR BIKE"`
	IsActive           *bool  `json:"is_active"`
	StaffID            *uint  `json:"staff_id"`
}

func (h *VehicleHandler) ListVehicles(c echo.Context) error {
	query := h.db.Model(&models.Vehicle{}).Preload("Staff").
		Where("branch_id = ?", middleware.BranchID(c))
	if c.QueryParam("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var vehicles []models.Vehicle
	if err := query.Order("registration_number").Find(&vehicles).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": vehicles})
}

func (h *VehicleHandler) CreateVehicle(c echo.Context) error {
	var req vehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	vehicle := models.Vehicle{
		BranchID:           middleware.BranchID(c),
		RegistrationNumber: req.RegistrationNumber,
		Model:              req.Model,
		Type:               req.Type,
		IsActive:           true,
		StaffID:            req.StaffID,
	}
	if req.IsActive != nil {
		vehicle.IsActive = *req.IsActive
	}
	if err := h.db.Create(&vehicle).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) UpdateVehicle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req vehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var vehicle models.Vehicle
	err = h.db.Where("branch_id = ?", middleware.BranchID(c)).First(&vehicle, id).Error
	if err != nil {
		return orNotFound(err, "Vehicle")
	}

	vehicle.RegistrationNumber = req.RegistrationNumber
	vehicle.Model = req.Model
	vehicle.Type = req.Type
	vehicle.StaffID = req.StaffID
	if req.IsActive != nil {
		vehicle.IsActive = *req.IsActive
	}
	if err := h.db.Save(&vehicle).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) DeleteVehicle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res := h.db.Where("branch_id = ?", middleware.BranchID(c)).Delete(&models.Vehicle{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Vehicle not found")
	}
	return c.NoContent(http.StatusNoContent)
}
