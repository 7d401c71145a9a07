package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanStatus represents the lifecycle of an enrollment.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusDropped   PlanStatus = "DROPPED"
)

// Plan is an enrollment tying a client to a driving-license course offering.
type Plan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID  uint `gorm:"index" json:"branch_id"`
	ClientID  uint `gorm:"index" json:"client_id"`
	VehicleID uint `gorm:"index" json:"vehicle_id"`

	NumberOfSessions int `gorm:"default:21" json:"number_of_sessions"`
	SessionDuration  int `gorm:"default:30" json:"session_duration"` // minutes

	// JoiningDate is a local calendar date (YYYY-MM-DD). The second installment of
	// an INSTALLMENTS payment falls due one calendar month after this date.
	JoiningDate string `gorm:"type:varchar(10)" json:"joining_date"`

	Status PlanStatus `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`

	// Relationships
	Branch   Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Client   Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Vehicle  Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Payment  *Payment  `gorm:"foreignKey:PlanID" json:"payment,omitempty"`
	Sessions []Session `gorm:"foreignKey:PlanID" json:"sessions,omitempty"`
}
