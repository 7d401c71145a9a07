package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationChannel selects the delivery transport for outbound messages.
type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "email"
	NotificationChannelWhatsapp NotificationChannel = "whatsapp"
	NotificationChannelNone     NotificationChannel = "none"
)

// NotificationKind classifies in-app notifications for filtering.
type NotificationKind string

const (
	NotificationKindPaymentReceived NotificationKind = "PAYMENT_RECEIVED"
	NotificationKindPaymentOverdue  NotificationKind = "PAYMENT_OVERDUE"
	NotificationKindLicenseExpiry   NotificationKind = "LICENSE_EXPIRY"
	NotificationKindTestEligibility NotificationKind = "TEST_ELIGIBILITY"
	NotificationKindSessionReminder NotificationKind = "SESSION_REMINDER"
)

// Notification is a branch-scoped in-app notification. Scoping is strictly by
// branch, not per user: everyone in the back office sees the same feed.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID uint `gorm:"index:idx_notifications_branch_read,priority:1,where:deleted_at IS NULL" json:"branch_id"`

	Kind    NotificationKind `gorm:"type:varchar(40)" json:"kind"`
	Title   string           `gorm:"type:varchar(255)" json:"title"`
	Message string           `gorm:"type:text" json:"message"`

	// ClientID is set when the notification concerns a specific client.
	ClientID *uint `gorm:"index" json:"client_id,omitempty"`

	IsRead bool `gorm:"default:false;index:idx_notifications_branch_read,priority:2,where:deleted_at IS NULL" json:"is_read"`
}
