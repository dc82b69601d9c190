package storage

import (
	"context"
	"fmt"
	"time"

	"job-portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobQuery 公开职位查询条件。
type JobQuery struct {
	CompanyID string
	Limit     int
}

// CreateJob 写入职位，默认可见，Date 为空时取当前时间。
func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Date.IsZero() {
		job.Date = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", translate(err, "job"))
	}
	return nil
}

// GetJob 根据 ID 获取职位并加载所属企业。
func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	if err := s.db.WithContext(ctx).Preload("Company").First(&job, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get job: %w", translate(err, "job"))
	}
	return &job, nil
}

// ListVisibleJobs 返回可见职位，按发布时间倒序。
func (s *Store) ListVisibleJobs(ctx context.Context, q JobQuery) ([]model.Job, error) {
	var jobs []model.Job
	query := s.db.WithContext(ctx).Preload("Company").
		Where("visible = ?", true).
		Order("date DESC")
	if q.CompanyID != "" {
		query = query.Where("company_id = ?", q.CompanyID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list visible jobs: %w", err)
	}
	return jobs, nil
}

// CountVisibleJobs 统计企业的可见职位数。
func (s *Store) CountVisibleJobs(ctx context.Context, companyID string) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Job{}).
		Where("company_id = ? AND visible = ?", companyID, true).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count visible jobs: %w", err)
	}
	return total, nil
}

// ListCompanyJobs 返回企业全部职位（含隐藏），附带实时统计的申请数。
func (s *Store) ListCompanyJobs(ctx context.Context, companyID string) ([]model.OwnJob, error) {
	var jobs []model.Job
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("date DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list company jobs: %w", err)
	}
	if len(jobs) == 0 {
		return []model.OwnJob{}, nil
	}

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}

	var counts []struct {
		JobID string
		Total int64
	}
	if err := s.db.WithContext(ctx).Model(&model.JobApplication{}).
		Select("job_id, COUNT(*) AS total").
		Where("job_id IN ?", ids).
		Group("job_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count applicants: %w", err)
	}
	byJob := make(map[string]int64, len(counts))
	for _, c := range counts {
		byJob[c.JobID] = c.Total
	}

	out := make([]model.OwnJob, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, model.OwnJob{Job: job, Applicants: byJob[job.ID]})
	}
	return out, nil
}

// ToggleJobVisibility 以单条条件更新翻转职位可见性，ID 与企业不匹配时返回未找到。
func (s *Store) ToggleJobVisibility(ctx context.Context, companyID, jobID string) (*model.Job, error) {
	tx := s.db.WithContext(ctx).Model(&model.Job{}).
		Where("id = ? AND company_id = ?", jobID, companyID).
		Update("visible", gorm.Expr("NOT visible"))
	if tx.Error != nil {
		return nil, fmt.Errorf("toggle job visibility: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, model.NotFound("Job not found")
	}
	return s.GetJob(ctx, jobID)
}
