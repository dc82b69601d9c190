package jobboard

import (
	"context"
	"errors"
	"fmt"

	"job-portal/internal/blob"
	"job-portal/internal/model"
)

// GetUser 返回求职者资料。
func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NotFound("User not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUserProfile 只更新提供的字段。
func (s *Service) UpdateUserProfile(ctx context.Context, userID string, patch model.UserProfilePatch) (*model.User, error) {
	user, err := s.store.UpdateUserProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NotFound("User not found")
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return user, nil
}

// UpdateResume 上传新简历并替换地址，旧文件尽力删除。
func (s *Service) UpdateResume(ctx context.Context, userID string, file *blob.File) (*model.User, error) {
	if file == nil || file.Body == nil {
		return nil, model.Invalid("Resume file is required")
	}
	url, err := s.blobs.Upload(ctx, ResumeFolder, file.Name, file.Body)
	if err != nil {
		if errors.Is(err, blob.ErrTooLarge) {
			return nil, model.Invalid("Resume exceeds size limit")
		}
		return nil, model.Upstream("Failed to upload resume", err)
	}

	previous, err := s.store.UpdateUserResume(ctx, userID, url)
	if err != nil {
		if derr := s.blobs.Delete(ctx, url); derr != nil {
			s.logger.Printf("remove orphaned resume %s: %v", url, derr)
		}
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NotFound("User not found")
		}
		return nil, fmt.Errorf("update resume: %w", err)
	}
	if previous != "" && previous != url {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			s.logger.Printf("remove previous resume %s: %v", previous, err)
		}
	}
	return s.GetUser(ctx, userID)
}

// ToggleSaveJob 翻转收藏状态；职位必须存在，但可以是已隐藏的职位。
func (s *Service) ToggleSaveJob(ctx context.Context, userID, jobID string) (bool, error) {
	if err := checkID(jobID, "job"); err != nil {
		return false, err
	}
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, model.NotFound("Job not found")
		}
		return false, fmt.Errorf("toggle saved job: %w", err)
	}
	saved, err := s.store.ToggleSavedJob(ctx, userID, jobID)
	if err != nil {
		return false, err
	}
	return saved, nil
}

// ListSavedJobs 返回仍可见的收藏职位，最近收藏的在前。
func (s *Service) ListSavedJobs(ctx context.Context, userID string) ([]model.JobListing, error) {
	jobs, err := s.store.ListSavedJobs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved jobs: %w", err)
	}
	return listings(jobs), nil
}
