package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"drivedesk/internal/billing"
	"drivedesk/internal/middleware"
	"drivedesk/internal/models"
)

type SessionHandler struct {
	db *gorm.DB
}

func NewSessionHandler(db *gorm.DB) *SessionHandler {
	return &SessionHandler{db: db}
}

// ListSessions returns the branch's sessions, filterable by day and plan.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	limit, offset := pagination(c)

	query := h.db.Model(&models.Session{}).
		Preload("Plan.Client").Preload("Vehicle").Preload("Staff").
		Where("branch_id = ?", middleware.BranchID(c))

	if day := c.QueryParam("date"); day != "" {
		date, err := billing.ParseLocalDate(day)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		query = query.Where("start_time >= ? AND start_time < ?", date, date.AddDate(0, 0, 1))
	}
	if planID := c.QueryParam("plan_id"); planID != "" {
		query = query.Where("plan_id = ?", planID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var sessions []models.Session
	if err := query.Order("start_time").Limit(limit).Offset(offset).Find(&sessions).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": sessions})
}

type generateSessionsRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	StaffID   uint   `json:"staff_id" validate:"required"`
}

// GenerateSessions lays out the plan's full daily session schedule starting
// from the given date. Sundays are skipped. Fails if the plan already has
// sessions; reschedule individual sessions instead.
func (h *SessionHandler) GenerateSessions(c echo.Context) error {
	planID, err := pathID(c)
	if err != nil {
		return err
	}
	var req generateSessionsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	branchID := middleware.BranchID(c)

	var plan models.Plan
	if err := h.db.Where("branch_id = ?", branchID).First(&plan, planID).Error; err != nil {
		return orNotFound(err, "Plan")
	}

	var staff models.Staff
	if err := h.db.Where("branch_id = ? AND role = ?", branchID, models.StaffRoleInstructor).
		First(&staff, req.StaffID).Error; err != nil {
		return orNotFound(err, "Instructor")
	}

	var existing int64
	if err := h.db.Model(&models.Session{}).Where("plan_id = ?", plan.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return echo.NewHTTPError(http.StatusConflict, "plan already has a session schedule")
	}

	first, err := time.ParseInLocation("2006-01-02 15:04",
		fmt.Sprintf("%s %s", req.StartDate, req.StartTime), time.Local)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start date/time")
	}

	sessions := make([]models.Session, 0, plan.NumberOfSessions)
	slot := first
	for number := 1; number <= plan.NumberOfSessions; number++ {
		for slot.Weekday() == time.Sunday {
			slot = slot.AddDate(0, 0, 1)
		}
		sessions = append(sessions, models.Session{
			BranchID:      branchID,
			PlanID:        plan.ID,
			VehicleID:     plan.VehicleID,
			StaffID:       staff.ID,
			SessionNumber: number,
			StartTime:     slot,
			Duration:      plan.SessionDuration,
			Status:        models.SessionStatusScheduled,
		})
		slot = slot.AddDate(0, 0, 1)
	}

	if err := h.db.Create(&sessions).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"items": sessions})
}

type sessionCreateRequest struct {
	PlanID    uint      `json:"plan_id" validate:"required"`
	StaffID   uint      `json:"staff_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
}

// CreateSession adds a one-off extra session to a plan, numbered after the
// plan's current last session.
func (h *SessionHandler) CreateSession(c echo.Context) error {
	var req sessionCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	branchID := middleware.BranchID(c)

	var plan models.Plan
	if err := h.db.Where("branch_id = ?", branchID).First(&plan, req.PlanID).Error; err != nil {
		return orNotFound(err, "Plan")
	}

	var lastNumber int
	h.db.Model(&models.Session{}).Where("plan_id = ?", plan.ID).
		Select("COALESCE(MAX(session_number), 0)").Scan(&lastNumber)

	session := models.Session{
		BranchID:      branchID,
		PlanID:        plan.ID,
		VehicleID:     plan.VehicleID,
		StaffID:       req.StaffID,
		SessionNumber: lastNumber + 1,
		StartTime:     req.StartTime,
		Duration:      plan.SessionDuration,
		Status:        models.SessionStatusScheduled,
	}
	if err := h.db.Create(&session).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, session)
}

type sessionUpdateRequest struct {
	Status    models.SessionStatus `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED NO_SHOW"`
	StartTime *time.Time           `json:"start_time"`
	StaffID   *uint                `json:"staff_id"`
}

// UpdateSession reschedules a session or records its outcome.
func (h *SessionHandler) UpdateSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req sessionUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var session models.Session
	err = h.db.Where("branch_id = ?", middleware.BranchID(c)).First(&session, id).Error
	if err != nil {
		return orNotFound(err, "Session")
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.StaffID != nil {
		updates["staff_id"] = *req.StaffID
	}
	if len(updates) > 0 {
		if err := h.db.Model(&session).Updates(updates).Error; err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, session)
}
