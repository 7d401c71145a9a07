package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"drivedesk/internal/models"
)

// TaskSendNotification is the worker task that delivers a notification over
// the branch's configured channel.
const TaskSendNotification = "send_notification"

// unreadCountTTL bounds staleness of the cached unread counter; every write
// path invalidates it anyway.
const unreadCountTTL = time.Minute

func unreadCountKey(branchID uint) string {
	return fmt.Sprintf("branch:%d:notifications:unread", branchID)
}

// NotificationService writes and reads the branch-scoped notification feed and
// forwards delivery work to the scheduled-task pipeline.
type NotificationService struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewNotificationService(db *gorm.DB, cache *RedisCache) *NotificationService {
	return &NotificationService{db: db, cache: cache}
}

// ListParams selects a page of the branch feed.
type ListParams struct {
	BranchID   uint
	Limit      int
	Offset     int
	UnreadOnly bool
}

// NotificationList is one page of the feed plus its counters.
type NotificationList struct {
	Items       []models.Notification `json:"items"`
	TotalCount  int64                 `json:"total_count"`
	UnreadCount int64                 `json:"unread_count"`
	HasMore     bool                  `json:"has_more"`
}

// HasMore reports whether another page exists after the given window.
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}

// GetNotifications returns a page of the branch's feed. Scoping is strictly by
// branch id, never per user.
func (s *NotificationService) GetNotifications(ctx context.Context, params ListParams) (*NotificationList, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	base := s.db.WithContext(ctx).Model(&models.Notification{}).Where("branch_id = ?", params.BranchID)

	query := base.Session(&gorm.Session{})
	if params.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	unreadCount, err := GetOrSet(s.cache, ctx, unreadCountKey(params.BranchID), unreadCountTTL, func() (int64, error) {
		var n int64
		err := base.Session(&gorm.Session{}).Where("is_read = ?", false).Count(&n).Error
		return n, err
	})
	if err != nil {
		return nil, err
	}

	var items []models.Notification
	if err := query.Order("created_at desc").Limit(params.Limit).Offset(params.Offset).Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationList{
		Items:       items,
		TotalCount:  totalCount,
		UnreadCount: unreadCount,
		HasMore:     HasMore(params.Offset, params.Limit, totalCount),
	}, nil
}

// MarkRead flags one notification of the branch as read.
func (s *NotificationService) MarkRead(ctx context.Context, branchID, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND branch_id = ?", id, branchID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.invalidateUnread(ctx, branchID)
	return nil
}

// MarkAllRead flags the whole branch feed as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, branchID uint) error {
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("branch_id = ? AND is_read = ?", branchID, false).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	s.invalidateUnread(ctx, branchID)
	return nil
}

// Insert stores a branch-scoped notification row.
func (s *NotificationService) Insert(ctx context.Context, n *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return err
	}
	s.invalidateUnread(ctx, n.BranchID)
	return nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, branchID uint) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, unreadCountKey(branchID))
	}
}

// NotifyPaymentReceived records a payment-received event for the branch feed
// and enqueues outbound delivery. It is invoked only for SUCCESS transactions
// whose payment and client can be resolved; callers treat it fire-and-forget.
func (s *NotificationService) NotifyPaymentReceived(ctx context.Context, txn *models.Transaction) error {
	if txn.Status != models.TransactionStatusSuccess {
		return fmt.Errorf("transaction %d is not successful", txn.ID)
	}

	var payment models.Payment
	if err := s.db.WithContext(ctx).Preload("Client").First(&payment, txn.PaymentID).Error; err != nil {
		return fmt.Errorf("resolve payment %d: %w", txn.PaymentID, err)
	}

	var branch models.Branch
	if err := s.db.WithContext(ctx).First(&branch, payment.BranchID).Error; err != nil {
		return fmt.Errorf("resolve branch %d: %w", payment.BranchID, err)
	}

	title := "Payment received"
	message := fmt.Sprintf("Received %.2f from %s", txn.Amount, payment.Client.FullName())
	if txn.InstallmentNumber > 0 {
		message = fmt.Sprintf("Received installment %d (%.2f) from %s",
			txn.InstallmentNumber, txn.Amount, payment.Client.FullName())
	}

	notification := models.Notification{
		BranchID: branch.ID,
		Kind:     models.NotificationKindPaymentReceived,
		Title:    title,
		Message:  message,
		ClientID: &payment.ClientID,
	}
	if err := s.Insert(ctx, &notification); err != nil {
		return err
	}

	// Forward the event to the delivery pipeline. The worker owns retries.
	settings := branch.Settings
	if settings == (models.BranchSettings{}) {
		settings = models.DefaultBranchSettings()
	}
	if settings.NotificationChannel == models.NotificationChannelNone {
		return nil
	}
	task := models.ScheduledTask{
		TaskName: TaskSendNotification,
		Arguments: map[string]interface{}{
			"branch_id": branch.ID,
			"channel":   string(settings.NotificationChannel),
			"phone":     settings.NotificationPhone,
			"email":     settings.NotificationEmail,
			"subject":   title,
			"message":   message,
		},
		Due:        time.Now(),
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
		EntityKey:  fmt.Sprintf("payment-received:transaction:%d", txn.ID),
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		// Delivery is best effort; the in-app notification already exists.
		log.Printf("failed to enqueue payment-received delivery: %v", err)
	}

	return nil
}
