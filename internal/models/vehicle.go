package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle is a training car/bike owned by a branch.
type Vehicle struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID uint `gorm:"index" json:"branch_id"`

	RegistrationNumber string `gorm:"type:varchar(20);index" json:"registration_number"`
	Model              string `gorm:"type:varchar(100)" json:"model"`
	Type               string `gorm:"type:varchar(20);default:'CAR'" json:"type"` // CAR or BIKE
	IsActive           bool   `gorm:"default:true" json:"is_active"`

	// StaffID is the instructor usually assigned to this vehicle.
	StaffID *uint `gorm:"index" json:"staff_id,omitempty"`

	// Relationships
	Staff *Staff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}
