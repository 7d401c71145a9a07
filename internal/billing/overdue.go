// Package billing holds the payment-lifecycle rules: the overdue classifier,
// ledger reconciliation, and the gateway status poller. Everything here is
// deterministic given an injected clock so it can be tested without a database
// or real time.
package billing

import (
	"time"

	"drivedesk/internal/models"
)

// DateLayout is the local calendar date format used for joining dates.
const DateLayout = "2006-01-02"

// ParseLocalDate parses a YYYY-MM-DD calendar date.
func ParseLocalDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// dateOnly strips the time-of-day and zone so calendar dates compare cleanly
// regardless of where the timestamps came from.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SecondInstallmentDueDate returns the due date of installment 2: one calendar
// month after the joining date. ok is false when the joining date is absent or
// unparseable.
func SecondInstallmentDueDate(joiningDate string) (time.Time, bool) {
	joined, err := ParseLocalDate(joiningDate)
	if err != nil {
		return time.Time{}, false
	}
	return joined.AddDate(0, 1, 0), true
}

// IsOverdue reports whether a payment obligation is currently overdue.
//
// Rules:
//   - no payment recorded at all counts as unpaid, hence overdue;
//   - FULLY_PAID short-circuits to false;
//   - FULL_PAYMENT is overdue while the full-payment sub-record is missing or
//     unpaid;
//   - INSTALLMENTS is overdue while installment 1 is missing or unpaid; once
//     installment 1 is settled, installment 2 only falls due one calendar
//     month after the joining date. A missing or unparseable joining date
//     means the due date cannot be determined, so the payment is not flagged;
//   - every other type (PAY_LATER included) is treated as overdue.
func IsOverdue(payment *models.Payment, joiningDate string, now time.Time) bool {
	if payment == nil {
		return true
	}
	if payment.PaymentStatus == models.PaymentStatusFullyPaid {
		return false
	}

	switch payment.PaymentType {
	case models.PaymentTypeFull:
		return payment.FullPayment == nil || !payment.FullPayment.IsPaid

	case models.PaymentTypeInstallments:
		first := payment.Installment(1)
		if first == nil || !first.IsPaid {
			return true
		}

		secondDue, ok := SecondInstallmentDueDate(joiningDate)
		if !ok {
			return false
		}
		if dateOnly(now).Before(dateOnly(secondDue)) {
			// Installment 2 is not due yet.
			return false
		}

		second := payment.Installment(2)
		return second == nil || !second.IsPaid

	default:
		return true
	}
}
