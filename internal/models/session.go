package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatus tracks a scheduled driving lesson.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
	SessionStatusNoShow    SessionStatus = "NO_SHOW"
)

// Session is one scheduled driving lesson belonging to a plan.
type Session struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID  uint `gorm:"index" json:"branch_id"`
	PlanID    uint `gorm:"index" json:"plan_id"`
	VehicleID uint `gorm:"index" json:"vehicle_id"`
	StaffID   uint `gorm:"index" json:"staff_id"`

	SessionNumber int           `json:"session_number"`
	StartTime     time.Time     `gorm:"index" json:"start_time"`
	Duration      int           `gorm:"default:30" json:"duration"` // minutes
	Status        SessionStatus `gorm:"type:varchar(20);default:'SCHEDULED'" json:"status"`

	// Relationships
	Plan    Plan    `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Staff   Staff   `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}
