package storage

import (
	"context"
	"fmt"
	"time"

	"job-portal/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureUser 按 ID 查找求职者，不存在时以给定字段创建。
func (s *Store) EnsureUser(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := s.db.WithContext(ctx).
		Where(model.User{ID: user.ID}).
		Attrs(model.User{Name: user.Name, Email: user.Email, Image: user.Image}).
		FirstOrCreate(user).Error; err != nil {
		return fmt.Errorf("ensure user: %w", translate(err, "user"))
	}
	return nil
}

// GetUser 根据 ID 获取求职者。
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get user: %w", translate(err, "User"))
	}
	return &user, nil
}

// UpdateUserProfile 仅更新补丁中提供的字段，返回更新后的求职者。
func (s *Store) UpdateUserProfile(ctx context.Context, id string, patch model.UserProfilePatch) (*model.User, error) {
	values := map[string]any{}
	if patch.Headline != nil {
		values["headline"] = *patch.Headline
	}
	if patch.Location != nil {
		values["location"] = *patch.Location
	}
	if patch.Skills != nil {
		values["skills"] = datatypes.NewJSONSlice(*patch.Skills)
	}
	if patch.Experience != nil {
		values["experience"] = datatypes.NewJSONSlice(*patch.Experience)
	}
	if patch.Education != nil {
		values["education"] = datatypes.NewJSONSlice(*patch.Education)
	}
	if patch.PortfolioLink != nil {
		values["portfolio_link"] = *patch.PortfolioLink
	}
	if patch.LinkedinLink != nil {
		values["linkedin_link"] = *patch.LinkedinLink
	}
	if len(values) > 0 {
		tx := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(values)
		if tx.Error != nil {
			return nil, fmt.Errorf("update user profile: %w", tx.Error)
		}
		if tx.RowsAffected == 0 {
			return nil, model.NotFound("User not found")
		}
	}
	return s.GetUser(ctx, id)
}

// UpdateUserResume 替换简历地址并返回旧地址。
func (s *Store) UpdateUserResume(ctx context.Context, id, resumeURL string) (string, error) {
	var previous string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Select("id", "resume").First(&user, "id = ?", id).Error; err != nil {
			return translate(err, "User")
		}
		previous = user.Resume
		return tx.Model(&model.User{}).Where("id = ?", id).Update("resume", resumeURL).Error
	})
	if err != nil {
		return "", fmt.Errorf("update resume: %w", err)
	}
	return previous, nil
}

// ToggleSavedJob 在事务中翻转收藏状态，返回翻转后是否已收藏。
func (s *Store) ToggleSavedJob(ctx context.Context, userID, jobID string) (bool, error) {
	saved := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND job_id = ?", userID, jobID).Delete(&model.SavedJob{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Create(&model.SavedJob{UserID: userID, JobID: jobID, SavedAt: time.Now()}).Error
	})
	if err != nil {
		return false, fmt.Errorf("toggle saved job: %w", translate(err, "saved job"))
	}
	return saved, nil
}

// ListSavedJobs 返回仍存在且可见的收藏职位，按收藏时间倒序。
func (s *Store) ListSavedJobs(ctx context.Context, userID string) ([]model.Job, error) {
	var rows []model.SavedJob
	if err := s.db.WithContext(ctx).
		Joins("JOIN jobs ON jobs.id = saved_jobs.job_id AND jobs.visible = ?", true).
		Preload("Job.Company").
		Where("saved_jobs.user_id = ?", userID).
		Order("saved_jobs.saved_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list saved jobs: %w", err)
	}
	jobs := make([]model.Job, 0, len(rows))
	for _, r := range rows {
		if r.Job != nil {
			jobs = append(jobs, *r.Job)
		}
	}
	return jobs, nil
}
