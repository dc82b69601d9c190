package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateApplication 表示同一求职者重复申请同一职位。
var ErrDuplicateApplication = model.Conflict("You have already applied for this job")

// HasApplied 报告求职者是否已申请该职位。
func (s *Store) HasApplied(ctx context.Context, jobID, userID string) (bool, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.JobApplication{}).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		Count(&total).Error; err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return total > 0, nil
}

// CreateApplication 写入申请，唯一索引冲突时返回 ErrDuplicateApplication。
func (s *Store) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Date.IsZero() {
		app.Date = time.Now()
	}
	if app.Status == "" {
		app.Status = model.ApplicationPending
	}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// ListCompanyApplications 返回企业收到的申请，加载求职者与职位，按日期倒序。
func (s *Store) ListCompanyApplications(ctx context.Context, companyID string) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	if err := s.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "image", "resume")
		}).
		Preload("Job", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "location", "category", "level", "salary")
		}).
		Where("company_id = ?", companyID).
		Order("date DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list company applications: %w", err)
	}
	return apps, nil
}

// ListUserApplications 返回求职者的申请，加载企业与职位，按日期倒序。
func (s *Store) ListUserApplications(ctx context.Context, userID string) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	if err := s.db.WithContext(ctx).
		Preload("Company", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "image")
		}).
		Preload("Job", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "location")
		}).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list user applications: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus 同时按申请 ID 与企业 ID 过滤更新状态，未命中返回未找到。
func (s *Store) UpdateApplicationStatus(ctx context.Context, companyID, id string, status model.ApplicationStatus) error {
	tx := s.db.WithContext(ctx).Model(&model.JobApplication{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("status", status)
	if tx.Error != nil {
		return fmt.Errorf("update application status: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return model.NotFound("Application not found")
	}
	return nil
}

// GetApplication 根据 ID 获取申请。
func (s *Store) GetApplication(ctx context.Context, id string) (*model.JobApplication, error) {
	var app model.JobApplication
	if err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get application: %w", translate(err, "application"))
	}
	return &app, nil
}

// CountApplicationsByStatus 按状态统计企业收到的申请数。
func (s *Store) CountApplicationsByStatus(ctx context.Context, companyID string) (map[model.ApplicationStatus]int64, error) {
	var rows []struct {
		Status model.ApplicationStatus
		Total  int64
	}
	if err := s.db.WithContext(ctx).Model(&model.JobApplication{}).
		Select("status, COUNT(*) AS total").
		Where("company_id = ?", companyID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	out := make(map[model.ApplicationStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}
