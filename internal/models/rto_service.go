package models

import (
	"time"

	"gorm.io/gorm"
)

// RTOServiceType is the kind of government service requested on behalf of a
// client.
type RTOServiceType string

const (
	RTOServiceTypeFullService       RTOServiceType = "FULL_SERVICE"
	RTOServiceTypeNewDrivingLicence RTOServiceType = "NEW_DRIVING_LICENCE"
	RTOServiceTypeLicenseRenewal    RTOServiceType = "LICENSE_RENEWAL"
	RTOServiceTypeDuplicateLicense  RTOServiceType = "DUPLICATE_LICENSE"
	RTOServiceTypeAddressChange     RTOServiceType = "ADDRESS_CHANGE"
)

// RTOServiceStatus tracks the request through the government office.
type RTOServiceStatus string

const (
	RTOServiceStatusPending    RTOServiceStatus = "PENDING"
	RTOServiceStatusDocuments  RTOServiceStatus = "AWAITING_DOCUMENTS"
	RTOServiceStatusSubmitted  RTOServiceStatus = "SUBMITTED"
	RTOServiceStatusCompleted  RTOServiceStatus = "COMPLETED"
	RTOServiceStatusRejected   RTOServiceStatus = "REJECTED"
)

// RTOService is a government-service request (license work done at the RTO on
// behalf of a client). Owns its Payment the same way a Plan does.
type RTOService struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID uint `gorm:"index" json:"branch_id"`
	ClientID uint `gorm:"index" json:"client_id"`

	ServiceType   RTOServiceType   `gorm:"type:varchar(40);default:'FULL_SERVICE'" json:"service_type"`
	Status        RTOServiceStatus `gorm:"type:varchar(40);default:'PENDING'" json:"status"`
	GovernmentFee float64          `gorm:"type:decimal(15,2)" json:"government_fee"`
	Remarks       string           `gorm:"type:text" json:"remarks"`

	// Relationships
	Client  Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Payment *Payment `gorm:"foreignKey:RTOServiceID" json:"payment,omitempty"`
}
