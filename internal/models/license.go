package models

import (
	"time"

	"gorm.io/gorm"
)

// LearningLicense is the learner's permit issued before driving-test
// eligibility. A client becomes test-eligible 30 days after the issue date.
type LearningLicense struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID uint `gorm:"index" json:"branch_id"`
	ClientID uint `gorm:"uniqueIndex" json:"client_id"`

	LicenseNumber string     `gorm:"type:varchar(50)" json:"license_number"`
	Class         string     `gorm:"type:varchar(20)" json:"class"` // e.g. "LMV", "MCWG"
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

// DrivingLicense is the full license. Expiry drives staged 30/7/1-day renewal
// notices.
type DrivingLicense struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID uint `gorm:"index" json:"branch_id"`
	ClientID uint `gorm:"uniqueIndex" json:"client_id"`

	LicenseNumber string     `gorm:"type:varchar(50)" json:"license_number"`
	Class         string     `gorm:"type:varchar(20)" json:"class"`
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}
