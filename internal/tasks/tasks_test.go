package tasks

import (
	"testing"
	"time"

	"drivedesk/internal/models"
)

func TestBuildScheduledTask(t *testing.T) {
	due := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	args := InstallmentReminderArgs{PaymentID: 42, DueDate: "2024-02-15"}

	task, err := BuildScheduledTask(TaskNameInstallmentReminder, args, due, nil,
		models.ScheduledTaskTypeOneTime, "installment_reminder:payment:42")
	if err != nil {
		t.Fatalf("BuildScheduledTask() error: %v", err)
	}

	if task.TaskName != TaskNameInstallmentReminder {
		t.Errorf("task name = %q", task.TaskName)
	}
	if task.Status != models.ScheduledTaskStatusActive {
		t.Errorf("status = %q; want active", task.Status)
	}
	if task.MaxAttempt != defaultMaxAttempt {
		t.Errorf("max attempt = %d; want %d", task.MaxAttempt, defaultMaxAttempt)
	}
	if got, ok := task.Arguments["payment_id"].(float64); !ok || got != 42 {
		t.Errorf("arguments payment_id = %v", task.Arguments["payment_id"])
	}
	if task.Arguments["due_date"] != "2024-02-15" {
		t.Errorf("arguments due_date = %v", task.Arguments["due_date"])
	}
}

func TestDecodeArgs(t *testing.T) {
	task := models.ScheduledTask{
		Arguments: map[string]interface{}{
			"license_id":  float64(7),
			"days_before": float64(30),
		},
	}

	var args LicenseExpiryArgs
	if err := decodeArgs(task, &args); err != nil {
		t.Fatalf("decodeArgs() error: %v", err)
	}
	if args.LicenseID != 7 || args.DaysBefore != 30 {
		t.Errorf("decoded args = %+v", args)
	}
}

func TestSessionReminderWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)

	from, to, err := SessionReminderWindow("morning", now)
	if err != nil {
		t.Fatalf("morning window error: %v", err)
	}
	if from.Day() != 10 || to.Day() != 11 {
		t.Errorf("morning window = [%s, %s); want today", from, to)
	}

	from, to, err = SessionReminderWindow("evening", now)
	if err != nil {
		t.Fatalf("evening window error: %v", err)
	}
	if from.Day() != 11 || to.Day() != 12 {
		t.Errorf("evening window = [%s, %s); want tomorrow", from, to)
	}

	if _, _, err := SessionReminderWindow("midnight", now); err == nil {
		t.Error("expected error for unknown slot")
	}
}

func TestRearmSecondInstallmentGuards(t *testing.T) {
	// Neither case reaches the database; a nil handle proves it.
	RearmSecondInstallment(nil, nil)
	RearmSecondInstallment(nil, &models.Transaction{PaymentID: 3, InstallmentNumber: 0})
	RearmSecondInstallment(nil, &models.Transaction{PaymentID: 3, InstallmentNumber: 2})
}
