package tasks

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"drivedesk/internal/models"
)

// SendNotificationArgs carries one outbound delivery.
type SendNotificationArgs struct {
	BranchID uint   `json:"branch_id"`
	Channel  string `json:"channel"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// handleSendNotification delivers a message over the branch's configured
// channel. Failures bubble up so the worker retries within the task's attempt
// budget.
func handleSendNotification(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var args SendNotificationArgs
	if err := decodeArgs(task, &args); err != nil {
		return nil, err
	}
	if args.Message == "" {
		return nil, fmt.Errorf("message is missing")
	}

	switch models.NotificationChannel(args.Channel) {
	case models.NotificationChannelWhatsapp:
		if args.Phone == "" {
			return nil, fmt.Errorf("whatsapp channel selected but no phone configured")
		}
		if err := deps.Whatsapp.SendMessage(args.Phone, args.Message); err != nil {
			return nil, err
		}

	case models.NotificationChannelEmail:
		if args.Email == "" {
			return nil, fmt.Errorf("email channel selected but no address configured")
		}
		subject := args.Subject
		if subject == "" {
			subject = "Notification"
		}
		if err := deps.Email.SendEmail([]string{args.Email}, subject, args.Message); err != nil {
			return nil, err
		}

	case models.NotificationChannelNone:
		return map[string]interface{}{"status": "skipped"}, nil

	default:
		return nil, fmt.Errorf("unsupported notification channel %q", args.Channel)
	}

	return map[string]interface{}{"status": "sent", "channel": args.Channel}, nil
}
