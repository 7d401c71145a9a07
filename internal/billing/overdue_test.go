package billing

import (
	"testing"
	"time"

	"drivedesk/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseLocalDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func installmentPayment(firstPaid, secondPaid bool) *models.Payment {
	return &models.Payment{
		PaymentType:   models.PaymentTypeInstallments,
		PaymentStatus: models.PaymentStatusPartiallyPaid,
		Installments: []models.InstallmentPayment{
			{InstallmentNumber: 1, IsPaid: firstPaid},
			{InstallmentNumber: 2, IsPaid: secondPaid},
		},
	}
}

func TestIsOverdue(t *testing.T) {
	tests := []struct {
		name        string
		payment     *models.Payment
		joiningDate string
		today       string
		want        bool
	}{
		{
			name: "no payment recorded",
			want: true,
		},
		{
			name: "fully paid short-circuits regardless of sub-records",
			payment: &models.Payment{
				PaymentType:   models.PaymentTypeInstallments,
				PaymentStatus: models.PaymentStatusFullyPaid,
			},
			joiningDate: "2020-01-01",
			today:       "2024-06-01",
			want:        false,
		},
		{
			name: "full payment without sub-record",
			payment: &models.Payment{
				PaymentType:   models.PaymentTypeFull,
				PaymentStatus: models.PaymentStatusPending,
			},
			today: "2024-06-01",
			want:  true,
		},
		{
			name: "full payment with unpaid sub-record",
			payment: &models.Payment{
				PaymentType:   models.PaymentTypeFull,
				PaymentStatus: models.PaymentStatusPending,
				FullPayment:   &models.FullPayment{IsPaid: false},
			},
			today: "2024-06-01",
			want:  true,
		},
		{
			name: "full payment settled",
			payment: &models.Payment{
				PaymentType:   models.PaymentTypeFull,
				PaymentStatus: models.PaymentStatusPending,
				FullPayment:   &models.FullPayment{IsPaid: true},
			},
			today: "2024-06-01",
			want:  false,
		},
		{
			name:        "installment one unpaid regardless of joining date",
			payment:     installmentPayment(false, false),
			joiningDate: "2099-01-01",
			today:       "2024-06-01",
			want:        true,
		},
		{
			name: "installment one missing entirely",
			payment: &models.Payment{
				PaymentType:   models.PaymentTypeInstallments,
				PaymentStatus: models.PaymentStatusPending,
			},
			joiningDate: "2024-01-15",
			today:       "2024-01-16",
			want:        true,
		},
		{
			name:        "second installment not yet due",
			payment:     installmentPayment(true, false),
			joiningDate: "2024-01-15",
			today:       "2024-02-10",
			want:        false,
		},
		{
			name:        "one day before the month boundary",
			payment:     installmentPayment(true, false),
			joiningDate: "2024-01-15",
			today:       "2024-02-14",
			want:        false,
		},
		{
			name:        "exactly at the month boundary",
			payment:     installmentPayment(true, false),
			joiningDate: "2024-01-15",
			today:       "2024-02-15",
			want:        true,
		},
		{
			name:        "boundary passed",
			payment:     installmentPayment(true, false),
			joiningDate: "2024-01-15",
			today:       "2024-02-16",
			want:        true,
		},
		{
			name:        "second installment paid after boundary",
			payment:     installmentPayment(true, true),
			joiningDate: "2024-01-15",
			today:       "2024-03-01",
			want:        false,
		},
		{
			name: "second installment row missing after boundary",
			payment: &models.Payment{
				PaymentType:   models.PaymentTypeInstallments,
				PaymentStatus: models.PaymentStatusPartiallyPaid,
				Installments: []models.InstallmentPayment{
					{InstallmentNumber: 1, IsPaid: true},
				},
			},
			joiningDate: "2024-01-15",
			today:       "2024-03-01",
			want:        true,
		},
		{
			name:        "missing joining date cannot be classified",
			payment:     installmentPayment(true, false),
			joiningDate: "",
			today:       "2024-06-01",
			want:        false,
		},
		{
			name:        "garbage joining date cannot be classified",
			payment:     installmentPayment(true, false),
			joiningDate: "not-a-date",
			today:       "2024-06-01",
			want:        false,
		},
		{
			name: "pay later falls through to overdue",
			payment: &models.Payment{
				PaymentType:   models.PaymentTypePayLater,
				PaymentStatus: models.PaymentStatusPending,
			},
			today: "2024-06-01",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now()
			if tt.today != "" {
				now = mustDate(t, tt.today)
			}
			got := IsOverdue(tt.payment, tt.joiningDate, now)
			if got != tt.want {
				t.Errorf("IsOverdue() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestIsOverdueEndOfMonthJoining(t *testing.T) {
	// Jan 31 + 1 month normalizes past the end of February; the classifier
	// follows AddDate, so the due date lands on Mar 2 (leap year) and Feb 29
	// is still in the grace window.
	p := installmentPayment(true, false)
	if IsOverdue(p, "2024-01-31", mustDate(t, "2024-02-29")) {
		t.Error("expected not overdue before normalized boundary")
	}
	if !IsOverdue(p, "2024-01-31", mustDate(t, "2024-03-02")) {
		t.Error("expected overdue at normalized boundary")
	}
}

func TestSecondInstallmentDueDate(t *testing.T) {
	due, ok := SecondInstallmentDueDate("2024-01-15")
	if !ok {
		t.Fatal("expected parseable joining date")
	}
	if got := due.Format(DateLayout); got != "2024-02-15" {
		t.Errorf("due = %s; want 2024-02-15", got)
	}

	if _, ok := SecondInstallmentDueDate(""); ok {
		t.Error("expected ok=false for empty joining date")
	}
}
