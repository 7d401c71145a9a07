package models

import (
	"time"

	"gorm.io/gorm"
)

// StaffRole distinguishes instructors from office staff.
type StaffRole string

const (
	StaffRoleInstructor StaffRole = "INSTRUCTOR"
	StaffRoleOffice     StaffRole = "OFFICE"
)

// Staff is an employee of a branch.
type Staff struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID uint `gorm:"index" json:"branch_id"`

	Name     string    `gorm:"type:varchar(255)" json:"name"`
	Phone    string    `gorm:"type:varchar(50)" json:"phone"`
	Role     StaffRole `gorm:"type:varchar(20);default:'INSTRUCTOR'" json:"role"`
	IsActive bool      `gorm:"default:true" json:"is_active"`
}
