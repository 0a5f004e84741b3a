package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/logger"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// ActivityLogService writes and queries the activity_logs audit trail.
type ActivityLogService struct {
	db   *gorm.DB
	cron *cron.Cron

	mu            sync.Mutex
	retentionDays int
}

func NewActivityLogService(db *gorm.DB, retentionDays int) *ActivityLogService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &ActivityLogService{db: db, retentionDays: retentionDays}
}

// Record writes one activity log row. Failures are logged, never surfaced:
// audit logging must not break the request it describes.
func (s *ActivityLogService) Record(level, module, action, message string, userID *uint, ip, userAgent string, extra interface{}) {
	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := models.ActivityLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Error().Err(err).Str("module", module).Msg("failed to write activity log")
	}
}

type ActivityLogListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type ActivityLogListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ActivityLog `json:"items"`
}

// List returns paginated activity logs, newest first.
func (s *ActivityLogService) List(req *ActivityLogListRequest) (*ActivityLogListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.ActivityLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.StartDate != "" {
		if start, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			query = query.Where("created_at >= ?", start)
		}
	}
	if req.EndDate != "" {
		if end, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
		}
	}

	var total int64
	query.Count(&total)

	var items []models.ActivityLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &ActivityLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// RetentionDays reports the current retention window.
func (s *ActivityLogService) RetentionDays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retentionDays
}

// SetRetentionDays adjusts the retention window at runtime.
func (s *ActivityLogService) SetRetentionDays(days int) error {
	if days <= 0 {
		return response.NewBadRequest("retention days must be positive")
	}
	s.mu.Lock()
	s.retentionDays = days
	s.mu.Unlock()
	return nil
}

// Cleanup deletes logs older than the retention window and returns the
// number of rows removed.
func (s *ActivityLogService) Cleanup() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays())
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}

// StartRetentionScheduler prunes old activity logs daily at 03:00.
func (s *ActivityLogService) StartRetentionScheduler() {
	if s.cron != nil {
		return
	}
	s.cron = cron.New()
	s.cron.AddFunc("0 3 * * *", func() {
		deleted, err := s.Cleanup()
		if err != nil {
			logger.Error().Err(err).Msg("activity log cleanup failed")
			return
		}
		if deleted > 0 {
			logger.Info().Int64("deleted", deleted).Msg("activity log cleanup done")
		}
	})
	s.cron.Start()
}

// StopRetentionScheduler stops the cleanup scheduler.
func (s *ActivityLogService) StopRetentionScheduler() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
