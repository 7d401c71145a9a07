package billing

import (
	"testing"
	"time"

	"drivedesk/internal/models"
)

func TestReconcileStatus(t *testing.T) {
	tests := []struct {
		name    string
		payment *models.Payment
		want    models.PaymentStatus
	}{
		{
			name:    "nil payment",
			payment: nil,
			want:    models.PaymentStatusPending,
		},
		{
			name: "full payment unpaid",
			payment: &models.Payment{
				PaymentType: models.PaymentTypeFull,
				FullPayment: &models.FullPayment{IsPaid: false},
			},
			want: models.PaymentStatusPending,
		},
		{
			name: "full payment paid",
			payment: &models.Payment{
				PaymentType: models.PaymentTypeFull,
				FullPayment: &models.FullPayment{IsPaid: true},
			},
			want: models.PaymentStatusFullyPaid,
		},
		{
			name: "installments none paid",
			payment: &models.Payment{
				PaymentType: models.PaymentTypeInstallments,
				Installments: []models.InstallmentPayment{
					{InstallmentNumber: 1}, {InstallmentNumber: 2},
				},
			},
			want: models.PaymentStatusPending,
		},
		{
			name: "installments one paid",
			payment: &models.Payment{
				PaymentType: models.PaymentTypeInstallments,
				Installments: []models.InstallmentPayment{
					{InstallmentNumber: 1, IsPaid: true}, {InstallmentNumber: 2},
				},
			},
			want: models.PaymentStatusPartiallyPaid,
		},
		{
			name: "installments both paid",
			payment: &models.Payment{
				PaymentType: models.PaymentTypeInstallments,
				Installments: []models.InstallmentPayment{
					{InstallmentNumber: 1, IsPaid: true}, {InstallmentNumber: 2, IsPaid: true},
				},
			},
			want: models.PaymentStatusFullyPaid,
		},
		{
			name: "pay later settled in full",
			payment: &models.Payment{
				PaymentType: models.PaymentTypePayLater,
				FullPayment: &models.FullPayment{IsPaid: true},
			},
			want: models.PaymentStatusFullyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReconcileStatus(tt.payment); got != tt.want {
				t.Errorf("ReconcileStatus() = %s; want %s", got, tt.want)
			}
		})
	}
}

func TestApplyTransaction(t *testing.T) {
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success settles first installment", func(t *testing.T) {
		p := &models.Payment{
			ID:          7,
			PaymentType: models.PaymentTypeInstallments,
			Installments: []models.InstallmentPayment{
				{PaymentID: 7, InstallmentNumber: 1, Amount: 5000},
				{PaymentID: 7, InstallmentNumber: 2, Amount: 5000},
			},
		}
		txn := &models.Transaction{
			PaymentID:         7,
			InstallmentNumber: 1,
			Amount:            5000,
			Mode:              models.PaymentModeQR,
			Status:            models.TransactionStatusSuccess,
			TransactionAt:     now,
		}

		if err := ApplyTransaction(p, txn); err != nil {
			t.Fatalf("ApplyTransaction() error: %v", err)
		}
		first := p.Installment(1)
		if !first.IsPaid || first.PaymentMode != models.PaymentModeQR {
			t.Errorf("installment 1 not settled: %+v", first)
		}
		if p.PaymentStatus != models.PaymentStatusPartiallyPaid {
			t.Errorf("status = %s; want PARTIALLY_PAID", p.PaymentStatus)
		}
	})

	t.Run("second success on same installment is rejected", func(t *testing.T) {
		p := &models.Payment{
			ID:          7,
			PaymentType: models.PaymentTypeInstallments,
			Installments: []models.InstallmentPayment{
				{PaymentID: 7, InstallmentNumber: 1, IsPaid: true},
			},
		}
		txn := &models.Transaction{
			PaymentID:         7,
			InstallmentNumber: 1,
			Status:            models.TransactionStatusSuccess,
			TransactionAt:     now,
		}
		if err := ApplyTransaction(p, txn); err == nil {
			t.Error("expected duplicate settlement to be rejected")
		}
	})

	t.Run("installment payment rejects a numberless settlement", func(t *testing.T) {
		p := &models.Payment{
			ID:            7,
			PaymentType:   models.PaymentTypeInstallments,
			PaymentStatus: models.PaymentStatusPending,
			Installments: []models.InstallmentPayment{
				{PaymentID: 7, InstallmentNumber: 1, Amount: 5000},
				{PaymentID: 7, InstallmentNumber: 2, Amount: 5000},
			},
		}
		txn := &models.Transaction{
			PaymentID:         7,
			InstallmentNumber: 0,
			Amount:            10000,
			Status:            models.TransactionStatusSuccess,
			TransactionAt:     now,
		}
		if err := ApplyTransaction(p, txn); err == nil {
			t.Fatal("expected installment-number-0 settlement to be rejected")
		}
		if p.FullPayment != nil {
			t.Error("rejected settlement must not create a full-payment record")
		}
		if p.PaymentStatus != models.PaymentStatusPending {
			t.Errorf("status = %s; want PENDING untouched", p.PaymentStatus)
		}
	})

	t.Run("success creates missing full-payment record", func(t *testing.T) {
		p := &models.Payment{ID: 9, PaymentType: models.PaymentTypeFull}
		txn := &models.Transaction{
			PaymentID:     9,
			Amount:        12000,
			Mode:          models.PaymentModeGateway,
			Status:        models.TransactionStatusSuccess,
			TransactionAt: now,
		}
		if err := ApplyTransaction(p, txn); err != nil {
			t.Fatalf("ApplyTransaction() error: %v", err)
		}
		if p.FullPayment == nil || !p.FullPayment.IsPaid {
			t.Fatal("full payment record not created/settled")
		}
		if p.PaymentStatus != models.PaymentStatusFullyPaid {
			t.Errorf("status = %s; want FULLY_PAID", p.PaymentStatus)
		}
	})

	t.Run("non-success rows change nothing", func(t *testing.T) {
		p := &models.Payment{ID: 9, PaymentType: models.PaymentTypeFull}
		txn := &models.Transaction{PaymentID: 9, Status: models.TransactionStatusFailed}
		if err := ApplyTransaction(p, txn); err != nil {
			t.Fatalf("ApplyTransaction() error: %v", err)
		}
		if p.FullPayment != nil {
			t.Error("failed transaction must not settle anything")
		}
	})

	t.Run("mismatched payment id is rejected", func(t *testing.T) {
		p := &models.Payment{ID: 9, PaymentType: models.PaymentTypeFull}
		txn := &models.Transaction{PaymentID: 8, Status: models.TransactionStatusSuccess}
		if err := ApplyTransaction(p, txn); err == nil {
			t.Error("expected mismatched payment id to be rejected")
		}
	})
}
