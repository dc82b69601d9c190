package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-portal/internal/model"
)

// AdminLogin 管理员登录，邮箱或密码错误返回相同的提示。
func (s *Service) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", model.Invalid("Email and password are required")
	}
	admin, err := s.store.FindAdminByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", model.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}
	ok, err := s.hasher.Verify(password, admin.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}
	if !ok {
		return "", model.Unauthorized("Invalid credentials")
	}
	token, err := s.adminTokens.Issue(admin.ID)
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}
	return token, nil
}

// BootstrapAdmin 创建初始管理员，邮箱已存在时不做任何修改。
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, model.Invalid("admin email and password are required")
	}
	if _, err := s.store.FindAdminByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if err := s.store.CreateAdmin(ctx, &model.Admin{Email: email, PasswordHash: hash}); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	s.logger.Printf("admin %s created", email)
	return true, nil
}

// ListPending 返回待审核申请，最早提交的在前。
func (s *Service) ListPending(ctx context.Context) ([]model.PendingCompany, error) {
	rows, err := s.store.ListPendingCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending companies: %w", err)
	}
	return rows, nil
}

// Approve 在单个事务中将申请迁移为正式企业。
func (s *Service) Approve(ctx context.Context, pendingID string) (*model.Company, error) {
	company, err := s.store.ApprovePendingCompany(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("company approved: %s (%s)", company.Name, company.ID)
	return company, nil
}

// Reject 删除申请，并尽力清理其 logo。
func (s *Service) Reject(ctx context.Context, pendingID string) error {
	pending, err := s.store.DeletePendingCompany(ctx, pendingID)
	if err != nil {
		return err
	}
	if pending.Image != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, pending.Image); err != nil {
			s.logger.Printf("remove logo of rejected company %s: %v", pending.ID, err)
		}
	}
	s.logger.Printf("company rejected: %s (%s)", pending.Name, pending.ID)
	return nil
}
