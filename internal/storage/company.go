package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationConflicts 标记注册信息与已有企业（含待审核）冲突的字段。
type RegistrationConflicts struct {
	Email  bool
	CIN    bool
	Domain bool
}

// Any 报告是否存在任一冲突。
func (c RegistrationConflicts) Any() bool {
	return c.Email || c.CIN || c.Domain
}

// CreateAdmin 新增管理员，邮箱重复时返回冲突错误。
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.Email = normalizeEmail(admin.Email)
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", translate(err, "admin"))
	}
	return nil
}

// FindAdminByEmail 根据邮箱查找管理员。
func (s *Store) FindAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.WithContext(ctx).First(&admin, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, fmt.Errorf("find admin: %w", translate(err, "admin"))
	}
	return &admin, nil
}

// GetAdmin 根据 ID 获取管理员。
func (s *Store) GetAdmin(ctx context.Context, id string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get admin: %w", translate(err, "admin"))
	}
	return &admin, nil
}

// GetCompany 根据 ID 获取已审核企业。
func (s *Store) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get company: %w", translate(err, "company"))
	}
	return &company, nil
}

// FindCompanyByEmail 根据邮箱查找已审核企业。
func (s *Store) FindCompanyByEmail(ctx context.Context, email string) (*model.Company, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, fmt.Errorf("find company: %w", translate(err, "company"))
	}
	return &company, nil
}

// FindPendingCompanyByEmail 根据邮箱查找待审核申请。
func (s *Store) FindPendingCompanyByEmail(ctx context.Context, email string) (*model.PendingCompany, error) {
	var pending model.PendingCompany
	if err := s.db.WithContext(ctx).First(&pending, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, fmt.Errorf("find pending company: %w", translate(err, "pending company"))
	}
	return &pending, nil
}

// FindRegistrationConflicts 在企业表与待审核表中检查邮箱、CIN、域名是否已被占用。
func (s *Store) FindRegistrationConflicts(ctx context.Context, email, cin, domain string) (RegistrationConflicts, error) {
	var res RegistrationConflicts
	email = normalizeEmail(email)
	for _, m := range []any{&model.Company{}, &model.PendingCompany{}} {
		var rows []identityRow
		if err := s.db.WithContext(ctx).Model(m).
			Select("email", "cin", "domain").
			Where("email = ? OR cin = ? OR domain = ?", email, cin, domain).
			Scan(&rows).Error; err != nil {
			return res, fmt.Errorf("check registration conflicts: %w", err)
		}
		for _, r := range rows {
			res.Email = res.Email || r.Email == email
			res.CIN = res.CIN || r.CIN == cin
			res.Domain = res.Domain || (domain != "" && r.Domain == domain)
		}
	}
	return res, nil
}

type identityRow struct {
	Email  string
	CIN    string `gorm:"column:cin"`
	Domain string
}

// CreatePendingCompany 写入待审核申请，SubmittedAt 为空时取当前时间。
func (s *Store) CreatePendingCompany(ctx context.Context, pending *model.PendingCompany) error {
	if pending.ID == "" {
		pending.ID = uuid.NewString()
	}
	if pending.SubmittedAt.IsZero() {
		pending.SubmittedAt = time.Now()
	}
	pending.Email = normalizeEmail(pending.Email)
	if err := s.db.WithContext(ctx).Create(pending).Error; err != nil {
		return fmt.Errorf("create pending company: %w", translate(err, "registration"))
	}
	return nil
}

// ListPendingCompanies 返回待审核申请，按提交时间升序。
func (s *Store) ListPendingCompanies(ctx context.Context) ([]model.PendingCompany, error) {
	var rows []model.PendingCompany
	if err := s.db.WithContext(ctx).Order("submitted_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending companies: %w", err)
	}
	return rows, nil
}

// DeletePendingCompany 删除待审核申请并返回被删除的记录。
func (s *Store) DeletePendingCompany(ctx context.Context, id string) (*model.PendingCompany, error) {
	var pending model.PendingCompany
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pending, "id = ?", id).Error; err != nil {
			return translate(err, "pending company")
		}
		res := tx.Delete(&model.PendingCompany{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.NotFound("pending company not found")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete pending company: %w", err)
	}
	return &pending, nil
}

// ApprovePendingCompany 在同一事务中将待审核申请迁移为正式企业。
// 若企业表中已存在相同邮箱、CIN 或域名，则删除过期的申请并返回冲突错误。
func (s *Store) ApprovePendingCompany(ctx context.Context, id string) (*model.Company, error) {
	var (
		company  *model.Company
		conflict error
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending model.PendingCompany
		if err := tx.First(&pending, "id = ?", id).Error; err != nil {
			return translate(err, "pending company")
		}

		var existing int64
		if err := tx.Model(&model.Company{}).
			Where("email = ? OR cin = ? OR domain = ?", pending.Email, pending.CIN, pending.Domain).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			if err := tx.Delete(&model.PendingCompany{}, "id = ?", pending.ID).Error; err != nil {
				return err
			}
			conflict = model.Conflict("Company with this email/CIN/domain already exists in main collection. Pending entry removed.")
			return nil
		}

		c := model.Company{
			ID:           uuid.NewString(),
			Name:         pending.Name,
			Email:        pending.Email,
			PasswordHash: pending.PasswordHash,
			Image:        pending.Image,
			Website:      pending.Website,
			Domain:       pending.Domain,
			CIN:          pending.CIN,
			IsVerified:   true,
			Status:       model.CompanyApproved,
		}
		if err := tx.Create(&c).Error; err != nil {
			return translate(err, "company")
		}
		res := tx.Delete(&model.PendingCompany{}, "id = ?", pending.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.NotFound("pending company not found")
		}
		company = &c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("approve company: %w", err)
	}
	if conflict != nil {
		return nil, conflict
	}
	return company, nil
}

// UpdateCompanyProfile 仅更新补丁中提供的字段，返回更新后的企业。
func (s *Store) UpdateCompanyProfile(ctx context.Context, id string, patch model.CompanyProfilePatch) (*model.Company, error) {
	values := map[string]any{}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	if patch.Industry != nil {
		values["industry"] = *patch.Industry
	}
	if patch.Location != nil {
		values["location"] = *patch.Location
	}
	if patch.CompanySize != nil {
		values["company_size"] = *patch.CompanySize
	}
	if len(values) > 0 {
		tx := s.db.WithContext(ctx).Model(&model.Company{}).Where("id = ?", id).Updates(values)
		if tx.Error != nil {
			return nil, fmt.Errorf("update company profile: %w", tx.Error)
		}
		if tx.RowsAffected == 0 {
			return nil, model.NotFound("company not found")
		}
	}
	return s.GetCompany(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
