package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"drivedesk/internal/models"
)

const branchSettingsTTL = 5 * time.Minute

// BranchSettingsService serves per-branch configuration through the cache.
// Settings are loaded per request and passed explicitly into billing and
// notification calls; nothing holds them as ambient global state.
type BranchSettingsService struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewBranchSettingsService(db *gorm.DB, cache *RedisCache) *BranchSettingsService {
	return &BranchSettingsService{db: db, cache: cache}
}

func branchSettingsKey(branchID uint) string {
	return fmt.Sprintf("branch:%d:settings", branchID)
}

// Get returns the branch settings, consulting the cache first.
func (s *BranchSettingsService) Get(ctx context.Context, branchID uint) (models.BranchSettings, error) {
	return GetOrSet(s.cache, ctx, branchSettingsKey(branchID), branchSettingsTTL, func() (models.BranchSettings, error) {
		var branch models.Branch
		if err := s.db.WithContext(ctx).First(&branch, branchID).Error; err != nil {
			return models.BranchSettings{}, err
		}
		if branch.Settings == (models.BranchSettings{}) {
			return models.DefaultBranchSettings(), nil
		}
		return branch.Settings, nil
	})
}

// Update persists new settings and invalidates the cached copy.
func (s *BranchSettingsService) Update(ctx context.Context, branchID uint, settings models.BranchSettings) error {
	if err := s.db.WithContext(ctx).Model(&models.Branch{}).
		Where("id = ?", branchID).
		Update("settings", settings).Error; err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, branchSettingsKey(branchID))
	}
	return nil
}
