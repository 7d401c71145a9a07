package tasks

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"drivedesk/internal/models"
)

// ProcessDue executes every active task whose due time has passed. The worker
// calls this on each tick; the workflow endpoint calls it filtered by name.
// Returns how many tasks were picked up.
func ProcessDue(ctx context.Context, db *gorm.DB, taskName string) int {
	now := time.Now()
	query := db.Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now)
	if taskName != "" {
		query = query.Where("task_name = ?", taskName)
	}

	var due []models.ScheduledTask
	if err := query.Order("due").Find(&due).Error; err != nil {
		log.Printf("worker: failed to fetch due tasks: %v", err)
		return 0
	}

	for _, task := range due {
		if ctx.Err() != nil {
			return len(due)
		}
		Execute(ctx, db, task)
	}
	return len(due)
}

// Execute runs one task through its handler, retrying up to the task's
// MaxAttempt within this run. Every attempt is recorded in the history table;
// the task row ends up done, rescheduled (recurring) or failed.
func Execute(ctx context.Context, db *gorm.DB, task models.ScheduledTask) {
	handler, found := GetHandler(task.TaskName)
	if !found {
		log.Printf("worker: no handler for task %q (id %d)", task.TaskName, task.ID)
		now := time.Now()
		db.Model(&task).Updates(map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})
		db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   1,
			Arguments:       task.Arguments,
		})
		return
	}

	maxAttempt := task.MaxAttempt
	if maxAttempt <= 0 {
		maxAttempt = 1
	}

	var lastStart time.Time
	succeeded := false
	for attempt := 1; attempt <= maxAttempt; attempt++ {
		lastStart = time.Now()
		result, err := handler(ctx, db, task)
		runtime := int(time.Since(lastStart).Milliseconds())

		status := "success"
		if err != nil {
			status = "failure"
			result = map[string]interface{}{"error": err.Error()}
			log.Printf("worker: task %s (id %d) attempt %d failed: %v", task.TaskName, task.ID, attempt, err)
		}

		db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           lastStart,
			Runtime:         runtime,
			Status:          status,
			AttemptNumber:   attempt,
			Arguments:       task.Arguments,
			Result:          result,
		})

		if err == nil {
			succeeded = true
			break
		}
	}

	updates := map[string]interface{}{"last_run": &lastStart}
	switch {
	case !succeeded:
		updates["status"] = models.ScheduledTaskStatusFailure
	case task.TaskType == models.ScheduledTaskTypeRecurring:
		next := task.NextDue()
		if next.After(task.Due) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = next
		} else {
			updates["status"] = models.ScheduledTaskStatusDone
		}
	default:
		updates["status"] = models.ScheduledTaskStatusDone
	}
	db.Model(&task).Updates(updates)
}
