package models

import (
	"time"

	"gorm.io/gorm"
)

// Client is an admitted student of the driving school.
type Client struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID uint `gorm:"index" json:"branch_id"`

	FirstName string `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`
	Phone     string `gorm:"type:varchar(50);index" json:"phone"`
	Email     string `gorm:"type:varchar(255)" json:"email"`
	Address   string `gorm:"type:text" json:"address"`
	BirthDate string `gorm:"type:varchar(10)" json:"birth_date"` // YYYY-MM-DD

	// Relationships
	Branch          Branch           `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Plans           []Plan           `gorm:"foreignKey:ClientID" json:"plans,omitempty"`
	RTOServices     []RTOService     `gorm:"foreignKey:ClientID" json:"rto_services,omitempty"`
	LearningLicense *LearningLicense `gorm:"foreignKey:ClientID" json:"learning_license,omitempty"`
	DrivingLicense  *DrivingLicense  `gorm:"foreignKey:ClientID" json:"driving_license,omitempty"`
}

// FullName joins first and last name for message templates.
func (c Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
