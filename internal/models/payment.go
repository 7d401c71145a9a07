package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentType determines how an obligation is settled.
type PaymentType string

const (
	PaymentTypeFull         PaymentType = "FULL_PAYMENT"
	PaymentTypeInstallments PaymentType = "INSTALLMENTS"
	PaymentTypePayLater     PaymentType = "PAY_LATER"
)

// PaymentStatus is the cached settlement state of a payment. It must always be
// derivable from the full-payment/installment sub-records and the transaction
// ledger; billing.ReconcileStatus recomputes it after every ledger write.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusFullyPaid     PaymentStatus = "FULLY_PAID"
)

// PaymentMode is how money moved.
type PaymentMode string

const (
	PaymentModeCash    PaymentMode = "CASH"
	PaymentModeQR      PaymentMode = "QR"
	PaymentModeGateway PaymentMode = "PAYMENT_GATEWAY"
)

// Payment is a billable obligation for a client's plan or RTO service. Exactly
// one of PlanID/RTOServiceID is set.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BranchID     uint  `gorm:"index" json:"branch_id"`
	ClientID     uint  `gorm:"index" json:"client_id"`
	PlanID       *uint `gorm:"index" json:"plan_id,omitempty"`
	RTOServiceID *uint `gorm:"index" json:"rto_service_id,omitempty"`

	TotalAmount       float64 `gorm:"type:decimal(15,2)" json:"total_amount"`
	Discount          float64 `gorm:"type:decimal(15,2)" json:"discount"`
	LicenseServiceFee float64 `gorm:"type:decimal(15,2)" json:"license_service_fee"`

	PaymentType   PaymentType   `gorm:"type:varchar(30);default:'FULL_PAYMENT'" json:"payment_type"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(30);default:'PENDING'" json:"payment_status"`

	// Relationships
	Client       Client               `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	FullPayment  *FullPayment         `gorm:"foreignKey:PaymentID" json:"full_payment,omitempty"`
	Installments []InstallmentPayment `gorm:"foreignKey:PaymentID" json:"installments,omitempty"`
	Transactions []Transaction        `gorm:"foreignKey:PaymentID" json:"transactions,omitempty"`
}

// AmountDue is the discounted total the client still owes in full.
func (p Payment) AmountDue() float64 {
	return p.TotalAmount - p.Discount
}

// Installment returns the installment row with the given number, or nil.
func (p Payment) Installment(number int) *InstallmentPayment {
	for i := range p.Installments {
		if p.Installments[i].InstallmentNumber == number {
			return &p.Installments[i]
		}
	}
	return nil
}

// FullPayment is the settlement sub-record for a FULL_PAYMENT obligation.
// Written once, when the payment is settled.
type FullPayment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PaymentID uint `gorm:"uniqueIndex" json:"payment_id"`

	IsPaid      bool        `gorm:"default:false" json:"is_paid"`
	PaymentDate *time.Time  `json:"payment_date,omitempty"`
	PaymentMode PaymentMode `gorm:"type:varchar(30)" json:"payment_mode"`
}

// InstallmentPayment is one of at most two scheduled partial payments.
// Installment 2 only becomes due one calendar month after the plan's joining
// date.
type InstallmentPayment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PaymentID         uint `gorm:"index;uniqueIndex:ux_installments_payment_number,priority:1" json:"payment_id"`
	InstallmentNumber int  `gorm:"uniqueIndex:ux_installments_payment_number,priority:2" json:"installment_number"` // 1 or 2

	Amount      float64     `gorm:"type:decimal(15,2)" json:"amount"`
	IsPaid      bool        `gorm:"default:false" json:"is_paid"`
	PaymentDate *time.Time  `json:"payment_date,omitempty"`
	PaymentMode PaymentMode `gorm:"type:varchar(30)" json:"payment_mode"`
}
