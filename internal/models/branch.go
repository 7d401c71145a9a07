package models

import (
	"time"

	"gorm.io/gorm"
)

// Branch is the tenancy unit. Every business record carries a BranchID and all
// reads are scoped by it.
type Branch struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name  string `gorm:"type:varchar(255)" json:"name"`
	City  string `gorm:"type:varchar(100)" json:"city"`
	Phone string `gorm:"type:varchar(50)" json:"phone"`

	// OrgID is the tenant organization id issued by the auth provider.
	OrgID string `gorm:"type:varchar(100);index" json:"org_id"`

	Settings BranchSettings `gorm:"serializer:json" json:"settings"`
}

// BranchSettings holds per-branch configuration served by /api/branch/settings.
type BranchSettings struct {
	WorkingHoursStart string  `json:"working_hours_start"` // "08:00"
	WorkingHoursEnd   string  `json:"working_hours_end"`   // "20:00"
	LicenseServiceFee float64 `json:"license_service_fee"`

	// Notification channel for payment/reminder events.
	NotificationChannel NotificationChannel `json:"notification_channel"`
	NotificationPhone   string              `json:"notification_phone"`
	NotificationEmail   string              `json:"notification_email"`

	SessionRemindersEnabled bool `json:"session_reminders_enabled"`
	PaymentRemindersEnabled bool `json:"payment_reminders_enabled"`
}

// DefaultBranchSettings is used until a branch configures its own.
func DefaultBranchSettings() BranchSettings {
	return BranchSettings{
		WorkingHoursStart:       "08:00",
		WorkingHoursEnd:         "20:00",
		NotificationChannel:     NotificationChannelWhatsapp,
		SessionRemindersEnabled: true,
		PaymentRemindersEnabled: true,
	}
}
