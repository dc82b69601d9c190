package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"job-portal/internal/blob"
	"job-portal/internal/model"
	"job-portal/internal/storage"
	"job-portal/internal/validation"
)

// LogoFolder 企业 logo 的存储目录。
const LogoFolder = "company_logos"

const alertTimeout = 5 * time.Second

// Store 企业生命周期所需的存储接口。
type Store interface {
	FindRegistrationConflicts(ctx context.Context, email, cin, domain string) (storage.RegistrationConflicts, error)
	CreatePendingCompany(ctx context.Context, pending *model.PendingCompany) error
	FindCompanyByEmail(ctx context.Context, email string) (*model.Company, error)
	FindPendingCompanyByEmail(ctx context.Context, email string) (*model.PendingCompany, error)
	ListPendingCompanies(ctx context.Context) ([]model.PendingCompany, error)
	ApprovePendingCompany(ctx context.Context, id string) (*model.Company, error)
	DeletePendingCompany(ctx context.Context, id string) (*model.PendingCompany, error)
	UpdateCompanyProfile(ctx context.Context, id string, patch model.CompanyProfilePatch) (*model.Company, error)
	FindAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	CreateAdmin(ctx context.Context, admin *model.Admin) error
}

// RegistrationAlerter 在新的注册申请写入后提醒管理员。
type RegistrationAlerter interface {
	PendingRegistration(ctx context.Context, pending model.PendingCompany) error
}

// PasswordHasher 单向密码哈希。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) (bool, error)
}

// TokenIssuer 为主体签发令牌。
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// Deps 服务依赖。
type Deps struct {
	Store         Store
	Hasher        PasswordHasher
	CompanyTokens TokenIssuer
	AdminTokens   TokenIssuer
	Blobs         blob.Store
	Alerts        RegistrationAlerter
	Logger        *log.Logger
}

// Service 负责企业注册、登录、审核以及管理员登录。
type Service struct {
	store         Store
	hasher        PasswordHasher
	companyTokens TokenIssuer
	adminTokens   TokenIssuer
	blobs         blob.Store
	alerts        RegistrationAlerter
	logger        *log.Logger
	now           func() time.Time
}

// NewService 创建服务，未提供 logger 时默认输出到标准输出。
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[registry] ", log.LstdFlags)
	}
	return &Service{
		store:         d.Store,
		hasher:        d.Hasher,
		companyTokens: d.CompanyTokens,
		adminTokens:   d.AdminTokens,
		blobs:         d.Blobs,
		alerts:        d.Alerts,
		logger:        logger,
		now:           time.Now,
	}
}

// Registration 企业注册表单。
type Registration struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Website  string `json:"website" form:"website" validate:"required,http_url"`
	Domain   string `json:"domain" form:"domain" validate:"required"`
	CIN      string `json:"cin" form:"cin" validate:"required"`
}

func (r *Registration) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Website = strings.TrimSpace(r.Website)
	r.Domain = strings.ToLower(strings.TrimSpace(r.Domain))
	r.CIN = strings.ToUpper(strings.TrimSpace(r.CIN))
}

// CompanySession 企业登录结果。
type CompanySession struct {
	Token   string         `json:"token"`
	Company CompanyAccount `json:"company"`
}

// CompanyAccount 登录后返回给前端的企业字段。
type CompanyAccount struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Image      string `json:"image"`
	IsVerified bool   `json:"isVerified"`
}

// Register 校验并写入待审核申请，不签发令牌。
// logo 上传失败时不写入任何记录；写入失败时删除已上传的 logo。
func (s *Service) Register(ctx context.Context, in Registration, logo *blob.File) error {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return err
	}
	if logo == nil || logo.Body == nil {
		return model.Invalid("Company logo is required")
	}

	conflicts, err := s.store.FindRegistrationConflicts(ctx, in.Email, in.CIN, in.Domain)
	if err != nil {
		return fmt.Errorf("register company: %w", err)
	}
	if conflicts.Any() {
		return model.Conflict("%s", conflictMessage(conflicts))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("register company: %w", err)
	}

	image, err := s.blobs.Upload(ctx, LogoFolder, logo.Name, logo.Body)
	if err != nil {
		if errors.Is(err, blob.ErrTooLarge) {
			return model.Invalid("Company logo exceeds size limit")
		}
		return model.Upstream("Failed to upload company logo", err)
	}

	pending := &model.PendingCompany{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Image:        image,
		Website:      in.Website,
		Domain:       in.Domain,
		CIN:          in.CIN,
		SubmittedAt:  s.now(),
	}
	if err := s.store.CreatePendingCompany(ctx, pending); err != nil {
		if derr := s.blobs.Delete(ctx, image); derr != nil {
			s.logger.Printf("remove orphaned logo %s: %v", image, derr)
		}
		if errors.Is(err, model.ErrConflict) {
			return model.Conflict("Registration failed: company already registered.")
		}
		return fmt.Errorf("register company: %w", err)
	}
	s.logger.Printf("registration received: %s (%s)", pending.Name, pending.Email)
	s.alert(ctx, *pending)
	return nil
}

// alert 提醒失败不影响注册结果。
func (s *Service) alert(ctx context.Context, pending model.PendingCompany) {
	if s.alerts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()
	if err := s.alerts.PendingRegistration(ctx, pending); err != nil {
		s.logger.Printf("registration alert for %s: %v", pending.Email, err)
	}
}

func conflictMessage(c storage.RegistrationConflicts) string {
	parts := []string{"Registration failed:"}
	if c.Email {
		parts = append(parts, "Email already exists.")
	}
	if c.CIN {
		parts = append(parts, "CIN already registered.")
	}
	if c.Domain {
		parts = append(parts, "Domain already registered.")
	}
	return strings.Join(parts, " ")
}

// Login 企业登录；未审核通过的账号无论密码是否正确都会被拒绝。
func (s *Service) Login(ctx context.Context, email, password string) (CompanySession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return CompanySession{}, model.Invalid("Email and password are required")
	}

	company, err := s.store.FindCompanyByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		if _, perr := s.store.FindPendingCompanyByEmail(ctx, email); perr == nil {
			return CompanySession{}, model.Unauthorized("Account is pending admin approval.")
		} else if !errors.Is(perr, model.ErrNotFound) {
			return CompanySession{}, fmt.Errorf("company login: %w", perr)
		}
		return CompanySession{}, model.NotFound("Company email not registered.")
	}
	if err != nil {
		return CompanySession{}, fmt.Errorf("company login: %w", err)
	}

	switch company.Status {
	case model.CompanyApproved:
	case model.CompanyPending:
		return CompanySession{}, model.Unauthorized("Account is pending admin approval.")
	case model.CompanyRejected:
		return CompanySession{}, model.Unauthorized("Your account registration was rejected.")
	default:
		return CompanySession{}, model.Unauthorized("Account not active or approved.")
	}

	ok, err := s.hasher.Verify(password, company.PasswordHash)
	if err != nil {
		return CompanySession{}, fmt.Errorf("company login: %w", err)
	}
	if !ok {
		return CompanySession{}, model.Unauthorized("Invalid email or password")
	}

	token, err := s.companyTokens.Issue(company.ID)
	if err != nil {
		return CompanySession{}, fmt.Errorf("company login: %w", err)
	}
	return CompanySession{
		Token: token,
		Company: CompanyAccount{
			ID:         company.ID,
			Name:       company.Name,
			Email:      company.Email,
			Image:      company.Image,
			IsVerified: company.IsVerified,
		},
	}, nil
}

// UpdateProfile 只更新提供的字段。
func (s *Service) UpdateProfile(ctx context.Context, companyID string, patch model.CompanyProfilePatch) (*model.Company, error) {
	company, err := s.store.UpdateCompanyProfile(ctx, companyID, patch)
	if err != nil {
		return nil, fmt.Errorf("update company profile: %w", err)
	}
	return company, nil
}
