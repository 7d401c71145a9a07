package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TransactionStatus is the terminal/non-terminal state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusSuccess   TransactionStatus = "SUCCESS"
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is an append-only ledger entry for a monetary movement. Rows are
// never mutated after reaching a terminal status; corrections are new rows.
//
// The partial unique index keeps the ledger consistent: at most one SUCCESS row
// per (payment, installment number). InstallmentNumber is 0 for full-payment
// and pay-later settlements so the index also covers them.
type Transaction struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID  uint `gorm:"index" json:"branch_id"`
	PaymentID uint `gorm:"index;uniqueIndex:ux_transactions_success,priority:1,where:status = 'SUCCESS' AND deleted_at IS NULL" json:"payment_id"`

	InstallmentNumber int `gorm:"default:0;uniqueIndex:ux_transactions_success,priority:2,where:status = 'SUCCESS' AND deleted_at IS NULL" json:"installment_number"`

	Amount float64           `gorm:"type:decimal(15,2)" json:"amount"`
	Mode   PaymentMode       `gorm:"type:varchar(30)" json:"mode"`
	Status TransactionStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	// OrderID links gateway transactions back to their payment link.
	OrderID string `gorm:"type:varchar(100);index" json:"order_id"`

	// ReceiptNumber is the reference printed on the client's receipt, assigned
	// when the row is written.
	ReceiptNumber string `gorm:"type:varchar(40);uniqueIndex" json:"receipt_number"`
	Notes         string `gorm:"type:text" json:"notes"`

	TransactionAt time.Time `json:"transaction_at"`

	// Relationships
	Payment Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// PaymentCallbackHistory archives raw gateway notification payloads for audit.
type PaymentCallbackHistory struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Gateway   string          `gorm:"type:varchar(50);not null" json:"gateway"`
	OrderID   string          `gorm:"type:varchar(100);index" json:"order_id"`
	Metadata  json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
