package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"drivedesk/internal/billing"
	"drivedesk/internal/models"
)

// ParseOrderID splits a gateway order id of the form
// "payment-{paymentID}-{installmentNumber}-{unix}" back into its parts.
func ParseOrderID(orderID string) (paymentID uint, installmentNumber int, err error) {
	parts := strings.Split(orderID, "-")
	if len(parts) != 4 || parts[0] != "payment" {
		return 0, 0, fmt.Errorf("unrecognized order id %q", orderID)
	}
	pid, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized order id %q", orderID)
	}
	inst, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized order id %q", orderID)
	}
	return uint(pid), inst, nil
}

// SettlementService appends ledger rows and folds them into payment state. It
// is the single write path for settlements, shared by the manual-transaction
// endpoint, the gateway webhook and the link poller.
type SettlementService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewSettlementService(db *gorm.DB, notifications *NotificationService) *SettlementService {
	return &SettlementService{db: db, notifications: notifications}
}

// Record appends txn to the ledger and, when it is a SUCCESS row, folds it
// into the payment's settlement sub-records and refreshes the cached status.
// Everything happens in one database transaction; the partial unique index on
// the ledger backstops the one-SUCCESS-per-slot invariant under races.
func (s *SettlementService) Record(ctx context.Context, payment *models.Payment, txn *models.Transaction) error {
	txn.BranchID = payment.BranchID
	txn.PaymentID = payment.ID
	if txn.TransactionAt.IsZero() {
		txn.TransactionAt = time.Now()
	}
	if txn.ReceiptNumber == "" {
		txn.ReceiptNumber = uuid.NewString()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := billing.ApplyTransaction(payment, txn); err != nil {
			return err
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if payment.FullPayment != nil {
			if err := tx.Save(payment.FullPayment).Error; err != nil {
				return err
			}
		}
		for i := range payment.Installments {
			if err := tx.Save(&payment.Installments[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Payment{}).Where("id = ?", payment.ID).
			Update("payment_status", payment.PaymentStatus).Error
	})
	if err != nil {
		return err
	}

	if txn.Status == models.TransactionStatusSuccess {
		if err := s.notifications.NotifyPaymentReceived(ctx, txn); err != nil {
			log.Printf("settlement: payment-received notification failed: %v", err)
		}
	}
	return nil
}

// SettleOrder resolves a gateway order id to its payment and records the
// settlement. The amount comes from the payment's own sub-records, not the
// gateway payload. Idempotent: a second call for an already-settled slot
// returns an error without touching the ledger.
func (s *SettlementService) SettleOrder(ctx context.Context, orderID string) (*models.Transaction, error) {
	paymentID, installmentNumber, err := ParseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := s.db.WithContext(ctx).
		Preload("FullPayment").Preload("Installments").
		First(&payment, paymentID).Error; err != nil {
		return nil, fmt.Errorf("resolve payment %d: %w", paymentID, err)
	}

	amount := payment.AmountDue()
	if installmentNumber > 0 {
		inst := payment.Installment(installmentNumber)
		if inst == nil {
			return nil, fmt.Errorf("payment %d has no installment %d", paymentID, installmentNumber)
		}
		amount = inst.Amount
	}

	txn := models.Transaction{
		InstallmentNumber: installmentNumber,
		Amount:            amount,
		Mode:              models.PaymentModeGateway,
		Status:            models.TransactionStatusSuccess,
		OrderID:           orderID,
	}
	if err := s.Record(ctx, &payment, &txn); err != nil {
		return nil, err
	}

	// The link session is spent now.
	s.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("order_id = ?", orderID).
		Update("is_active", false)

	return &txn, nil
}
