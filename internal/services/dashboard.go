package services

import (
	"time"

	"github.com/stackroom/backend/internal/models"
	"gorm.io/gorm"
)

// DashboardService aggregates per-user counts across accessible projects.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStats struct {
	Projects          int64            `json:"projects"`
	OwnedProjects     int64            `json:"owned_projects"`
	Stacks            int64            `json:"stacks"`
	Insights          int64            `json:"insights"`
	Images            int64            `json:"images"`
	Documents         int64            `json:"documents"`
	UpcomingDeadlines []models.Project `json:"upcoming_deadlines"`
}

// Stats computes the dashboard for one user.
func (s *DashboardService) Stats(userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{UpcomingDeadlines: []models.Project{}}

	projectIDs, err := s.accessibleProjectIDs(userID)
	if err != nil {
		return nil, err
	}
	stats.Projects = int64(len(projectIDs))

	if err := s.db.Model(&models.Project{}).
		Where("owner_id = ?", userID).
		Count(&stats.OwnedProjects).Error; err != nil {
		return nil, err
	}

	if len(projectIDs) == 0 {
		return stats, nil
	}

	if err := s.db.Model(&models.Stack{}).
		Where("project_id IN ?", projectIDs).
		Count(&stats.Stacks).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Insight{}).
		Joins("JOIN stacks ON stacks.id = insights.stack_id").
		Where("stacks.project_id IN ?", projectIDs).
		Count(&stats.Insights).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Image{}).
		Where("project_id IN ?", projectIDs).
		Count(&stats.Images).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Document{}).
		Where("project_id IN ?", projectIDs).
		Count(&stats.Documents).Error; err != nil {
		return nil, err
	}

	// Next 30 days of deadlines across accessible projects.
	now := time.Now()
	if err := s.db.Where("id IN ?", projectIDs).
		Where("deadline IS NOT NULL AND deadline BETWEEN ? AND ?", now, now.AddDate(0, 0, 30)).
		Order("deadline ASC").
		Limit(5).
		Find(&stats.UpcomingDeadlines).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *DashboardService) accessibleProjectIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Project{}).
		Distinct("projects.id").
		Joins("LEFT JOIN project_collaborators ON project_collaborators.project_id = projects.id").
		Where("projects.owner_id = ? OR project_collaborators.user_id = ?", userID, userID).
		Pluck("projects.id", &ids).Error
	return ids, err
}
