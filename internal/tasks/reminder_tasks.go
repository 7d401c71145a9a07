package tasks

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"drivedesk/internal/billing"
	"drivedesk/internal/models"
)

// handleInstallmentReminder notifies the branch and the client that the second
// installment has fallen due. The reminder is skipped silently when the
// installment was settled in the meantime.
func handleInstallmentReminder(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var args InstallmentReminderArgs
	if err := decodeArgs(task, &args); err != nil {
		return nil, err
	}

	var payment models.Payment
	err := db.WithContext(ctx).Preload("Client").Preload("Installments").First(&payment, args.PaymentID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment %d: %w", args.PaymentID, err)
	}

	if payment.PaymentStatus == models.PaymentStatusFullyPaid {
		return map[string]interface{}{"status": "skipped", "reason": "already paid"}, nil
	}
	second := payment.Installment(2)
	if second != nil && second.IsPaid {
		return map[string]interface{}{"status": "skipped", "reason": "installment settled"}, nil
	}

	amount := 0.0
	if second != nil {
		amount = second.Amount
	}

	notification := models.Notification{
		BranchID: payment.BranchID,
		Kind:     models.NotificationKindPaymentOverdue,
		Title:    "Installment due",
		Message:  fmt.Sprintf("Second installment of %.2f for %s was due on %s", amount, payment.Client.FullName(), args.DueDate),
		ClientID: &payment.ClientID,
	}
	if err := deps.Notifications.Insert(ctx, &notification); err != nil {
		return nil, err
	}

	if payment.Client.Phone != "" {
		msg := fmt.Sprintf("Hi %s, a friendly reminder that your second installment of %.2f is due. Please visit the branch or use your payment link.",
			payment.Client.FirstName, amount)
		if err := deps.Whatsapp.SendMessage(payment.Client.Phone, msg); err != nil {
			// The branch notification is already recorded; client delivery
			// rides on the worker's retry budget.
			return nil, err
		}
	}

	return map[string]interface{}{"status": "sent", "payment_id": payment.ID}, nil
}

// handleLicenseExpiryNotice sends one staged notice (30/7/1 days before
// expiry) for a driving license.
func handleLicenseExpiryNotice(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var args LicenseExpiryArgs
	if err := decodeArgs(task, &args); err != nil {
		return nil, err
	}

	var license models.DrivingLicense
	if err := db.WithContext(ctx).First(&license, args.LicenseID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch driving license %d: %w", args.LicenseID, err)
	}

	var client models.Client
	if err := db.WithContext(ctx).First(&client, license.ClientID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch client %d: %w", license.ClientID, err)
	}

	expiry := ""
	if license.ExpiryDate != nil {
		expiry = license.ExpiryDate.Format(billing.DateLayout)
	}

	notification := models.Notification{
		BranchID: license.BranchID,
		Kind:     models.NotificationKindLicenseExpiry,
		Title:    "License expiring",
		Message:  fmt.Sprintf("Driving license %s of %s expires in %d day(s) (%s)", license.LicenseNumber, client.FullName(), args.DaysBefore, expiry),
		ClientID: &license.ClientID,
	}
	if err := deps.Notifications.Insert(ctx, &notification); err != nil {
		return nil, err
	}

	if client.Phone != "" {
		msg := fmt.Sprintf("Hi %s, your driving license %s expires on %s. Contact us to start the renewal.",
			client.FirstName, license.LicenseNumber, expiry)
		if err := deps.Whatsapp.SendMessage(client.Phone, msg); err != nil {
			return nil, err
		}
	}

	return map[string]interface{}{"status": "sent", "days_before": args.DaysBefore}, nil
}

// handleTestEligibility notifies that a learning-license holder may now book
// the driving test (30 days after issue).
func handleTestEligibility(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var args TestEligibilityArgs
	if err := decodeArgs(task, &args); err != nil {
		return nil, err
	}

	var license models.LearningLicense
	if err := db.WithContext(ctx).First(&license, args.LicenseID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch learning license %d: %w", args.LicenseID, err)
	}

	var client models.Client
	if err := db.WithContext(ctx).First(&client, license.ClientID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch client %d: %w", license.ClientID, err)
	}

	notification := models.Notification{
		BranchID: license.BranchID,
		Kind:     models.NotificationKindTestEligibility,
		Title:    "Client test-eligible",
		Message:  fmt.Sprintf("%s is now eligible to book the driving test (learning license %s)", client.FullName(), license.LicenseNumber),
		ClientID: &license.ClientID,
	}
	if err := deps.Notifications.Insert(ctx, &notification); err != nil {
		return nil, err
	}

	if client.Phone != "" {
		msg := fmt.Sprintf("Hi %s, 30 days have passed since your learner's license was issued. You can now book your driving test with us.",
			client.FirstName)
		if err := deps.Whatsapp.SendMessage(client.Phone, msg); err != nil {
			log.Printf("tasks: test-eligibility whatsapp to client %d failed: %v", client.ID, err)
		}
	}

	return map[string]interface{}{"status": "sent", "client_id": client.ID}, nil
}
