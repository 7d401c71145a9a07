package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentLink records a gateway payment-link session. The gateway itself is
// authoritative for settlement; this row exists so a pending link can be
// resumed instead of recreated, and so callbacks can be traced.
type PaymentLink struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID          uint `gorm:"index" json:"branch_id"`
	PaymentID         uint `gorm:"index" json:"payment_id"`
	InstallmentNumber int  `gorm:"default:0" json:"installment_number"`

	OrderID  string `gorm:"type:varchar(100);index" json:"order_id"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	RequestMetadata  json.RawMessage `gorm:"type:jsonb" json:"request_metadata"`
	ResponseMetadata json.RawMessage `gorm:"type:jsonb" json:"response_metadata"`

	ExpiresAt time.Time `json:"expires_at"`
}
