package tasks

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"drivedesk/internal/billing"
	"drivedesk/internal/models"
)

// InstallmentReminderArgs identify the payment whose second installment is
// coming due.
type InstallmentReminderArgs struct {
	PaymentID uint   `json:"payment_id"`
	DueDate   string `json:"due_date"`
}

// TriggerInstallmentReminder schedules the installment-2 reminder at one
// calendar month after the joining date. Fire-and-forget.
func TriggerInstallmentReminder(db *gorm.DB, payment *models.Payment, joiningDate string) {
	if payment == nil || payment.PaymentType != models.PaymentTypeInstallments {
		return
	}

	due, ok := billing.SecondInstallmentDueDate(joiningDate)
	if !ok {
		log.Printf("tasks: cannot schedule installment reminder for payment %d: no joining date", payment.ID)
		return
	}

	args := InstallmentReminderArgs{
		PaymentID: payment.ID,
		DueDate:   due.Format(billing.DateLayout),
	}
	entityKey := fmt.Sprintf("%s:payment:%d", TaskNameInstallmentReminder, payment.ID)
	enqueue(db, TaskNameInstallmentReminder, args, due, entityKey)
}

// RearmSecondInstallment re-schedules the installment-2 reminder after an
// installment-1 settlement. Deduplicated by entity key, so both settlement
// paths (webhook and link poller) may call it for the same payment.
// Fire-and-forget.
func RearmSecondInstallment(db *gorm.DB, txn *models.Transaction) {
	if txn == nil || txn.InstallmentNumber != 1 {
		return
	}
	var payment models.Payment
	if err := db.Preload("Installments").First(&payment, txn.PaymentID).Error; err != nil || payment.PlanID == nil {
		return
	}
	var plan models.Plan
	if err := db.First(&plan, *payment.PlanID).Error; err != nil {
		return
	}
	TriggerInstallmentReminder(db, &payment, plan.JoiningDate)
}

// LicenseExpiryArgs identify the driving license and which staged notice this
// is.
type LicenseExpiryArgs struct {
	LicenseID  uint `json:"license_id"`
	DaysBefore int  `json:"days_before"`
}

// licenseExpiryStages are the staged notices sent before a driving license
// expires.
var licenseExpiryStages = []int{30, 7, 1}

// TriggerLicenseExpiryNotices schedules the staged 30/7/1-day expiry notices
// for a driving license. Stages already in the past are skipped.
// Fire-and-forget.
func TriggerLicenseExpiryNotices(db *gorm.DB, license *models.DrivingLicense) {
	if license == nil || license.ExpiryDate == nil {
		return
	}

	now := time.Now()
	for _, days := range licenseExpiryStages {
		due := license.ExpiryDate.AddDate(0, 0, -days)
		if due.Before(now) {
			continue
		}
		args := LicenseExpiryArgs{LicenseID: license.ID, DaysBefore: days}
		entityKey := fmt.Sprintf("%s:license:%d:%d", TaskNameLicenseExpiryNotice, license.ID, days)
		enqueue(db, TaskNameLicenseExpiryNotice, args, due, entityKey)
	}
}

// TestEligibilityArgs identify the learning license whose holder becomes
// test-eligible.
type TestEligibilityArgs struct {
	LicenseID uint `json:"license_id"`
}

// TriggerTestEligibilityReminder schedules a notice 30 days after the
// learning license's issue date, when the holder may book the driving test.
// Fire-and-forget.
func TriggerTestEligibilityReminder(db *gorm.DB, license *models.LearningLicense) {
	if license == nil || license.IssueDate == nil {
		return
	}

	due := license.IssueDate.AddDate(0, 0, 30)
	args := TestEligibilityArgs{LicenseID: license.ID}
	entityKey := fmt.Sprintf("%s:license:%d", TaskNameTestEligibility, license.ID)
	enqueue(db, TaskNameTestEligibility, args, due, entityKey)
}

// ScheduleRecurringSessionReminders installs the two standing reminder tasks
// (morning run for today's sessions, evening run for tomorrow's) using daily
// recurrence rules. Safe to call at every worker start; existing active tasks
// are left alone.
func ScheduleRecurringSessionReminders(db *gorm.DB) {
	slots := map[string]string{
		"morning": "FREQ=DAILY;BYHOUR=7;BYMINUTE=0",
		"evening": "FREQ=DAILY;BYHOUR=18;BYMINUTE=0",
	}
	now := time.Now()

	for slot, rule := range slots {
		entityKey := fmt.Sprintf("%s:%s", TaskNameSessionReminders, slot)

		var count int64
		if err := db.Model(&models.ScheduledTask{}).
			Where("entity_key = ? AND status = ?", entityKey, models.ScheduledTaskStatusActive).
			Count(&count).Error; err != nil || count > 0 {
			continue
		}

		recurring := rule
		task, err := BuildScheduledTask(TaskNameSessionReminders,
			map[string]interface{}{"slot": slot},
			now, &recurring, models.ScheduledTaskTypeRecurring, entityKey)
		if err != nil {
			log.Printf("tasks: failed to build session reminder task: %v", err)
			continue
		}
		if err := db.Create(task).Error; err != nil {
			log.Printf("tasks: failed to enqueue session reminder task: %v", err)
		}
	}
}
