package tasks

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"drivedesk/internal/models"
)

// Task names known to the registry.
const (
	TaskNameSendNotification    = "send_notification"
	TaskNameInstallmentReminder = "installment_reminder"
	TaskNameLicenseExpiryNotice = "license_expiry_notice"
	TaskNameTestEligibility     = "test_eligibility"
	TaskNameSessionReminders    = "session_reminders"
)

// defaultMaxAttempt is how often the worker retries a failing reminder before
// giving up.
const defaultMaxAttempt = 3

// BuildScheduledTask builds a ScheduledTask record from typed arguments.
func BuildScheduledTask(taskName string, args interface{}, due time.Time, recurringInterval *string, taskType models.ScheduledTaskType, entityKey string) (*models.ScheduledTask, error) {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var mapArgs map[string]interface{}
	if err := json.Unmarshal(argsBytes, &mapArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into map: %w", err)
	}

	return &models.ScheduledTask{
		TaskName:          taskName,
		Arguments:         mapArgs,
		Due:               due,
		RecurringInterval: recurringInterval,
		Status:            models.ScheduledTaskStatusActive,
		TaskType:          taskType,
		MaxAttempt:        defaultMaxAttempt,
		EntityKey:         entityKey,
	}, nil
}

// enqueue stores a one-shot task unless an active task with the same entity
// key already exists. Errors are logged, never returned: reminder scheduling
// must not block the operation that triggered it.
func enqueue(db *gorm.DB, taskName string, args interface{}, due time.Time, entityKey string) {
	if entityKey != "" {
		var count int64
		if err := db.Model(&models.ScheduledTask{}).
			Where("entity_key = ? AND status = ?", entityKey, models.ScheduledTaskStatusActive).
			Count(&count).Error; err == nil && count > 0 {
			return
		}
	}

	task, err := BuildScheduledTask(taskName, args, due, nil, models.ScheduledTaskTypeOneTime, entityKey)
	if err != nil {
		log.Printf("tasks: failed to build %s task: %v", taskName, err)
		return
	}
	if err := db.Create(task).Error; err != nil {
		log.Printf("tasks: failed to enqueue %s task: %v", taskName, err)
	}
}

// decodeArgs unmarshals the task's argument map into a typed struct.
func decodeArgs(task models.ScheduledTask, dest interface{}) error {
	argsBytes, err := json.Marshal(task.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}
	if err := json.Unmarshal(argsBytes, dest); err != nil {
		return fmt.Errorf("failed to unmarshal args: %w", err)
	}
	return nil
}
