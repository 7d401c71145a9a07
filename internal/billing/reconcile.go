package billing

import (
	"fmt"
	"time"

	"drivedesk/internal/models"
)

// ReconcileStatus derives the payment status from the settlement sub-records.
// The column on Payment is a cache; this is the authoritative computation and
// must be re-run after every ledger write.
func ReconcileStatus(p *models.Payment) models.PaymentStatus {
	if p == nil {
		return models.PaymentStatusPending
	}

	switch p.PaymentType {
	case models.PaymentTypeInstallments:
		paid := 0
		for _, inst := range p.Installments {
			if inst.IsPaid {
				paid++
			}
		}
		switch {
		case paid >= 2:
			return models.PaymentStatusFullyPaid
		case paid == 1:
			return models.PaymentStatusPartiallyPaid
		default:
			return models.PaymentStatusPending
		}

	default:
		// FULL_PAYMENT and PAY_LATER settle through a single full-payment record.
		if p.FullPayment != nil && p.FullPayment.IsPaid {
			return models.PaymentStatusFullyPaid
		}
		return models.PaymentStatusPending
	}
}

// ApplyTransaction folds a SUCCESS ledger row into the payment's settlement
// sub-records and refreshes the cached status. Non-success rows are recorded in
// the ledger but change nothing here.
//
// The ledger invariant (at most one SUCCESS row per payment and installment
// number) is enforced both here and by a partial unique index on transactions.
func ApplyTransaction(p *models.Payment, txn *models.Transaction) error {
	if txn.Status != models.TransactionStatusSuccess {
		return nil
	}
	if txn.PaymentID != p.ID {
		return fmt.Errorf("transaction %d belongs to payment %d, not %d", txn.ID, txn.PaymentID, p.ID)
	}
	// An installments payment never settles through the full-payment record;
	// every SUCCESS row must name which installment it covers.
	if p.PaymentType == models.PaymentTypeInstallments && txn.InstallmentNumber == 0 {
		return fmt.Errorf("payment %d is paid in installments; transaction must carry an installment number", p.ID)
	}

	paidAt := txn.TransactionAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	switch {
	case p.PaymentType == models.PaymentTypeInstallments && txn.InstallmentNumber >= 1:
		if txn.InstallmentNumber > 2 {
			return fmt.Errorf("installment number %d out of range", txn.InstallmentNumber)
		}
		inst := p.Installment(txn.InstallmentNumber)
		if inst == nil {
			p.Installments = append(p.Installments, models.InstallmentPayment{
				PaymentID:         p.ID,
				InstallmentNumber: txn.InstallmentNumber,
				Amount:            txn.Amount,
				IsPaid:            true,
				PaymentDate:       &paidAt,
				PaymentMode:       txn.Mode,
			})
		} else {
			if inst.IsPaid {
				return fmt.Errorf("installment %d of payment %d already settled", txn.InstallmentNumber, p.ID)
			}
			inst.IsPaid = true
			inst.PaymentDate = &paidAt
			inst.PaymentMode = txn.Mode
		}

	default:
		if p.FullPayment == nil {
			p.FullPayment = &models.FullPayment{PaymentID: p.ID}
		}
		if p.FullPayment.IsPaid {
			return fmt.Errorf("payment %d already settled in full", p.ID)
		}
		p.FullPayment.IsPaid = true
		p.FullPayment.PaymentDate = &paidAt
		p.FullPayment.PaymentMode = txn.Mode
	}

	p.PaymentStatus = ReconcileStatus(p)
	return nil
}
