package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"drivedesk/internal/models"
)

// SessionReminderWindow computes the [from, to) interval a reminder slot
// covers: the morning run reminds about today's sessions, the evening run
// about tomorrow's.
func SessionReminderWindow(slot string, now time.Time) (time.Time, time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch slot {
	case "morning":
		return day, day.AddDate(0, 0, 1), nil
	case "evening":
		tomorrow := day.AddDate(0, 0, 1)
		return tomorrow, tomorrow.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown session reminder slot %q", slot)
	}
}

// RunSessionReminders sends WhatsApp reminders for every scheduled session in
// the slot's window. Shared by the recurring worker task and the cron HTTP
// endpoint. Per-session delivery failures are logged and counted, not fatal.
func RunSessionReminders(ctx context.Context, db *gorm.DB, slot string, now time.Time) (map[string]interface{}, error) {
	from, to, err := SessionReminderWindow(slot, now)
	if err != nil {
		return nil, err
	}

	var sessions []models.Session
	err = db.WithContext(ctx).
		Preload("Plan.Client").Preload("Vehicle").
		Where("start_time >= ? AND start_time < ? AND status = ?", from, to, models.SessionStatusScheduled).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	sent := 0
	failed := 0
	for _, session := range sessions {
		client := session.Plan.Client
		if client.Phone == "" {
			continue
		}
		msg := fmt.Sprintf("Hi %s, reminder: your driving session %d is on %s with vehicle %s.",
			client.FirstName, session.SessionNumber,
			session.StartTime.Format("Mon 02 Jan, 03:04 PM"),
			session.Vehicle.RegistrationNumber)
		if err := deps.Whatsapp.SendMessage(client.Phone, msg); err != nil {
			log.Printf("tasks: session reminder to client %d failed: %v", client.ID, err)
			failed++
			continue
		}
		sent++
	}

	return map[string]interface{}{
		"slot":   slot,
		"total":  len(sessions),
		"sent":   sent,
		"failed": failed,
	}, nil
}

// handleSessionReminders is the recurring worker entry point.
func handleSessionReminders(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	slot, _ := task.Arguments["slot"].(string)
	return RunSessionReminders(ctx, db, slot, time.Now())
}
